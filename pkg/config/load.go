package config

import (
	"path/filepath"

	"github.com/stevedore-dev/stevedore/pkg/global"
	"github.com/stevedore-dev/stevedore/pkg/util/files"
)

// Load reads the config file in projectDir, if there is one, and validates
// it. A missing file yields an empty ConfigFile and an empty path.
func Load(projectDir string) (*ConfigFile, string, error) {
	filename := filepath.Join(projectDir, global.ConfigFilename)
	exists, err := files.Exists(filename)
	if err != nil {
		return nil, "", &ParseError{Filename: filename, Err: err}
	}
	if !exists {
		return &ConfigFile{}, "", nil
	}

	cfg, err := Parse(filename)
	if err != nil {
		return nil, filename, err
	}
	if err := Validate(cfg).Err(); err != nil {
		return nil, filename, err
	}
	return cfg, filename, nil
}
