package model

import (
	"bytes"
	"encoding/json"
	"iter"

	"github.com/rotisserie/eris"
)

// Collection maps identifiers to entities. A repeated key replaces the
// stored entity but keeps the position of its first insertion, so iteration
// and JSON output follow input row order.
type Collection[T any] struct {
	keys  []string
	items map[string]T
}

// NewCollection returns an empty collection.
func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{items: make(map[string]T)}
}

// Put stores v under key. Last write wins.
func (c *Collection[T]) Put(key string, v T) {
	if c.items == nil {
		c.items = make(map[string]T)
	}
	if _, ok := c.items[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.items[key] = v
}

// Get returns the entity stored under key.
func (c *Collection[T]) Get(key string) (T, bool) {
	v, ok := c.items[key]
	return v, ok
}

// Len returns the number of distinct keys.
func (c *Collection[T]) Len() int {
	return len(c.keys)
}

// Keys returns the identifiers in insertion order.
func (c *Collection[T]) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// All iterates key/entity pairs in insertion order.
func (c *Collection[T]) All() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		for _, k := range c.keys {
			if !yield(k, c.items[k]) {
				return
			}
		}
	}
}

// MarshalJSON encodes the collection as a single JSON object.
func (c *Collection[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	out := bytes.NewBufferString("{")
	for i, k := range c.keys {
		if i > 0 {
			out.WriteByte(',')
		}
		buf.Reset()
		if err := enc.Encode(k); err != nil {
			return nil, eris.Wrapf(err, "collection: encode key %q", k)
		}
		out.Write(bytes.TrimRight(buf.Bytes(), "\n"))
		out.WriteByte(':')

		buf.Reset()
		if err := enc.Encode(c.items[k]); err != nil {
			return nil, eris.Wrapf(err, "collection: encode %q", k)
		}
		out.Write(bytes.TrimRight(buf.Bytes(), "\n"))
	}
	out.WriteByte('}')
	return out.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving member order.
func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return eris.Wrap(err, "collection: read opening token")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return eris.Errorf("collection: expected '{', got %v", tok)
	}

	c.keys = nil
	c.items = make(map[string]T)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return eris.Wrap(err, "collection: read key")
		}
		key, ok := tok.(string)
		if !ok {
			return eris.Errorf("collection: expected string key, got %v", tok)
		}
		var v T
		if err := dec.Decode(&v); err != nil {
			return eris.Wrapf(err, "collection: decode %q", key)
		}
		c.Put(key, v)
	}

	if _, err := dec.Token(); err != nil {
		return eris.Wrap(err, "collection: read closing token")
	}
	return nil
}

// Facilities projects every entity of c into a Facility, in insertion order.
func Facilities[T Entity](c *Collection[T]) []Facility {
	out := make([]Facility, 0, c.Len())
	for _, v := range c.All() {
		out = append(out, v.Facility())
	}
	return out
}
