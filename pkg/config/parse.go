package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"
)

// Parse reads and parses a stevedore.yaml file into a ConfigFile.
// This only does YAML parsing - no validation or defaults.
// Returns ParseError if the file cannot be read or parsed.
func Parse(filename string) (*ConfigFile, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}
	return ParseBytes(contents, filename)
}

// ParseBytes parses YAML content into a ConfigFile. Unknown keys are an error.
// The filename is used for error messages only.
func ParseBytes(contents []byte, filename string) (*ConfigFile, error) {
	cfg := &ConfigFile{}

	if len(contents) == 0 {
		// Empty file is valid, returns empty config
		return cfg, nil
	}

	if err := yaml.UnmarshalStrict(contents, cfg); err != nil {
		return nil, &ParseError{
			Filename: filename,
			Err:      fmt.Errorf("invalid YAML: %w", err),
		}
	}

	return cfg, nil
}

// ParseReader parses from an io.Reader (useful for testing).
func ParseReader(r io.Reader, filename string) (*ConfigFile, error) {
	contents, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}
	return ParseBytes(contents, filename)
}
