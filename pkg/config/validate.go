package config

import (
	"fmt"
	"strings"
)

// Validate checks the values of a parsed config file.
func Validate(cfg *ConfigFile) *ValidationResult {
	result := &ValidationResult{}

	if cfg.Parallel != nil && *cfg.Parallel < 1 {
		result.AddError(&ValidationError{
			Field:   "parallel",
			Value:   fmt.Sprint(*cfg.Parallel),
			Message: "must be at least 1",
		})
	}

	if cfg.Dockerfile != nil && strings.TrimSpace(*cfg.Dockerfile) == "" {
		result.AddError(&ValidationError{Field: "dockerfile", Message: "must not be empty"})
	}

	seen := map[string]bool{}
	for _, name := range cfg.Services {
		switch {
		case strings.TrimSpace(name) == "":
			result.AddError(&ValidationError{Field: "services", Message: "service names must not be empty"})
		case seen[name]:
			result.AddError(&ValidationError{Field: "services", Value: name, Message: "listed more than once"})
		}
		seen[name] = true
	}

	return result
}
