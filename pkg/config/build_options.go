package config

import (
	"github.com/stevedore-dev/stevedore/pkg/archive"
	"github.com/stevedore-dev/stevedore/pkg/global"
	"github.com/stevedore-dev/stevedore/pkg/ignore"
)

// BuildOptions contains the options of one build invocation, merged from
// CLI flags and stevedore.yaml. Flags win when set explicitly.
type BuildOptions struct {
	MultiDockerignore bool
	ConvertEOL        bool
	NoConvertEOL      bool
	NoGitignore       bool
	Dockerfile        string
	Services          []string
	Parallel          int
}

// DefaultBuildOptions returns BuildOptions for the host operating system.
func DefaultBuildOptions(goos string) BuildOptions {
	return BuildOptions{
		ConvertEOL: global.ConvertEOLByDefault(goos),
		Parallel:   DefaultParallel(),
	}
}

// Flag names understood by Merge.
const (
	FlagMultiDockerignore = "multi-dockerignore"
	FlagConvertEOL        = "convert-eol"
	FlagNoGitignore       = "nogitignore"
	FlagDockerfile        = "dockerfile"
	FlagService           = "service"
	FlagParallel          = "parallel"
)

// Merge fills every option that was not set on the command line from cfg.
// changed reports whether a flag was given explicitly.
func (o *BuildOptions) Merge(cfg *ConfigFile, changed func(flag string) bool) {
	if cfg.MultiDockerignore != nil && !changed(FlagMultiDockerignore) {
		o.MultiDockerignore = *cfg.MultiDockerignore
	}
	if cfg.ConvertEOL != nil && !changed(FlagConvertEOL) {
		o.ConvertEOL = *cfg.ConvertEOL
	}
	if cfg.NoGitignore != nil && !changed(FlagNoGitignore) {
		o.NoGitignore = *cfg.NoGitignore
	}
	if cfg.Dockerfile != nil && !changed(FlagDockerfile) {
		o.Dockerfile = *cfg.Dockerfile
	}
	if len(cfg.Services) > 0 && !changed(FlagService) {
		o.Services = cfg.Services
	}
	if cfg.Parallel != nil && !changed(FlagParallel) {
		o.Parallel = *cfg.Parallel
	}
}

func (o BuildOptions) Mode() ignore.Mode {
	if o.MultiDockerignore {
		return ignore.MultiRoot
	}
	return ignore.SingleRoot
}

func (o BuildOptions) EOLPolicy() archive.EOLPolicy {
	return archive.PolicyFor(o.ConvertEOL, o.NoConvertEOL)
}
