package property

import (
	"bufio"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ReadLines returns the lines of path with surrounding whitespace trimmed.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "property: open %s", path)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "property: read %s", path)
	}
	return lines, nil
}

// ParseFile parses every line of path. Blank lines are ignored; lines that
// fail to parse are logged and skipped. Only I/O errors are returned.
func ParseFile(path string, logger *zap.Logger) ([]Property, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	lines, err := ReadLines(path)
	if err != nil {
		return nil, err
	}

	out := make([]Property, 0, len(lines))
	for i, line := range lines {
		if line == "" {
			continue
		}
		p, err := Parse(line)
		if err != nil {
			logger.Warn("property: skipped invalid line",
				zap.String("path", path),
				zap.Int("line", i+1),
				zap.String("value", line),
				zap.Error(err),
			)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
