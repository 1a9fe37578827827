package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

// readFile decodes a flat YAML config file. Keys match the environment
// variable names in any case; unknown keys are rejected so typos surface at
// startup instead of silently falling back to defaults.
func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var values map[string]any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	var unknown []string
	for key := range values {
		if _, ok := defaults[strings.ToUpper(key)]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("parsing config file: unknown keys %s", strings.Join(unknown, ", "))
	}

	return values, nil
}
