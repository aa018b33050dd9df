// Package yamlutil decodes pipeline definitions with goccy/go-yaml.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
	ErrNotMapping     = errors.New("yamlutil: expected a mapping")
)

// Pair is one entry of an ordered mapping, with scalars rendered as text.
type Pair struct {
	Key   string
	Value string
}

// UnmarshalStrict decodes data into v and rejects unknown fields.
// Errors carry the line and column of the offending node.
func UnmarshalStrict(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %s: %w", yaml.FormatError(err, false, true), err)
	}
	return nil
}

// OrderedPairs decodes a mapping node in document order. It is meant for
// UnmarshalYAML methods, where map iteration order would lose the
// author's ordering. Null values become "", other scalars use fmt.Sprint.
func OrderedPairs(unmarshal func(any) error) ([]Pair, error) {
	var ordered yaml.MapSlice
	if err := unmarshal(&ordered); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMapping, err)
	}
	pairs := make([]Pair, 0, len(ordered))
	for _, item := range ordered {
		pairs = append(pairs, Pair{Key: text(item.Key), Value: text(item.Value)})
	}
	return pairs, nil
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
