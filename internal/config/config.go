package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// PathsConfig holds the input CSV and output JSON locations for each converter.
type PathsConfig struct {
	SchoolsInput     string `yaml:"schools_input" mapstructure:"schools_input"`
	SchoolsOutput    string `yaml:"schools_output" mapstructure:"schools_output"`
	MedicalInput     string `yaml:"medical_input" mapstructure:"medical_input"`
	MedicalOutput    string `yaml:"medical_output" mapstructure:"medical_output"`
	SportsInput      string `yaml:"sports_input" mapstructure:"sports_input"`
	SportsOutput     string `yaml:"sports_output" mapstructure:"sports_output"`
	PropertiesInput  string `yaml:"properties_input" mapstructure:"properties_input"`
	PropertiesOutput string `yaml:"properties_output" mapstructure:"properties_output"`
}

// StoreConfig configures the database backend used by the load command.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MetricsConfig configures the Prometheus textfile written after each
// command. An empty Textfile disables it.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEOMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("paths.schools_input", "data/raw/schools.csv")
	v.SetDefault("paths.schools_output", "data/processed/schools.json")
	v.SetDefault("paths.medical_input", "data/raw/medical.csv")
	v.SetDefault("paths.medical_output", "data/processed/medical.json")
	v.SetDefault("paths.sports_input", "data/raw/sports.csv")
	v.SetDefault("paths.sports_output", "data/processed/sports.json")
	v.SetDefault("paths.properties_input", "data/raw/property_strings.txt")
	v.SetDefault("paths.properties_output", "data/processed/cleaned_properties.json")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "geomap.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("metrics.textfile", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// Validate checks that the settings a command needs are present.
// Mode is one of "convert", "properties", "export", or "load".
func (c *Config) Validate(mode string) error {
	var errs []string

	required := func(key, val string) {
		if strings.TrimSpace(val) == "" {
			errs = append(errs, key+" is required")
		}
	}

	switch mode {
	case "convert":
		required("paths.schools_input", c.Paths.SchoolsInput)
		required("paths.schools_output", c.Paths.SchoolsOutput)
		required("paths.medical_input", c.Paths.MedicalInput)
		required("paths.medical_output", c.Paths.MedicalOutput)
		required("paths.sports_input", c.Paths.SportsInput)
		required("paths.sports_output", c.Paths.SportsOutput)
	case "properties":
		required("paths.properties_input", c.Paths.PropertiesInput)
		required("paths.properties_output", c.Paths.PropertiesOutput)
	case "export":
		required("paths.schools_output", c.Paths.SchoolsOutput)
		required("paths.medical_output", c.Paths.MedicalOutput)
		required("paths.sports_output", c.Paths.SportsOutput)
	case "load":
		required("paths.schools_output", c.Paths.SchoolsOutput)
		required("paths.medical_output", c.Paths.MedicalOutput)
		required("paths.sports_output", c.Paths.SportsOutput)
		required("store.database_url", c.Store.DatabaseURL)
		if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
			errs = append(errs, "store.driver must be sqlite or postgres")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
