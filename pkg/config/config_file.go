package config

// ConfigFile represents the raw stevedore.yaml as written by users.
// All fields are pointers/omitempty to distinguish "not set" from "set to zero value".
type ConfigFile struct {
	MultiDockerignore *bool    `yaml:"multi-dockerignore,omitempty"`
	ConvertEOL        *bool    `yaml:"convert-eol,omitempty"`
	NoGitignore       *bool    `yaml:"nogitignore,omitempty"`
	Dockerfile        *string  `yaml:"dockerfile,omitempty"`
	Parallel          *int     `yaml:"parallel,omitempty"`
	Services          []string `yaml:"services,omitempty"`
}
