package cli

import (
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/stevedore-dev/stevedore/pkg/build"
	"github.com/stevedore-dev/stevedore/pkg/config"
	"github.com/stevedore-dev/stevedore/pkg/console"
	"github.com/stevedore-dev/stevedore/pkg/errors"
	"github.com/stevedore-dev/stevedore/pkg/util/files"
)

const ignoreFilesHelp = `
.dockerignore and .gitignore files:

By default, only one .dockerignore file at the source folder (project root) is
used, and it applies to every service. .dockerignore files in subdirectories
are reported and not used.

With --multi-dockerignore (-m), each service uses the .dockerignore file at the
root of its own build context. A .dockerignore file at the project root is then
only used by a service whose build context is the project root.

Patterns of .gitignore files found anywhere in the project also apply, each
relative to the directory of its file, unless --nogitignore (-G) is given.

Files in .balena or .resin directories are always part of the build context.
`

const eolHelp = `
Line endings:

With --convert-eol (-l), text files with Windows (CRLF) line endings are sent
with LF line endings; the files on disk are untouched. This is the default on
Windows. --noconvert-eol disables it and warns about every such file.
`

func addPlanningFlags(cmd *cobra.Command, opts *config.BuildOptions) {
	registerPlanningFlags(cmd.Flags(), opts)
	cmd.MarkFlagsMutuallyExclusive(config.FlagConvertEOL, "noconvert-eol")
}

func registerPlanningFlags(f *pflag.FlagSet, opts *config.BuildOptions) {
	defaults := config.DefaultBuildOptions(runtime.GOOS)
	f.BoolVarP(&opts.MultiDockerignore, config.FlagMultiDockerignore, "m", false, "Have each service use its own .dockerignore file")
	f.BoolVarP(&opts.ConvertEOL, config.FlagConvertEOL, "l", defaults.ConvertEOL, "Convert line endings from CRLF (Windows format) to LF (Unix format)")
	f.BoolVar(&opts.NoConvertEOL, "noconvert-eol", false, "Don't convert line endings from CRLF (Windows format) to LF (Unix format)")
	f.BoolVarP(&opts.NoGitignore, config.FlagNoGitignore, "G", false, "Don't use .gitignore files to filter the build context")
	f.StringVar(&opts.Dockerfile, config.FlagDockerfile, "", "Alternative Dockerfile name/path, relative to the source folder")
	f.StringArrayVarP(&opts.Services, config.FlagService, "s", nil, "Only build the named service (repeatable)")
	f.IntVar(&opts.Parallel, config.FlagParallel, defaults.Parallel, "Number of services to archive at once")
}

// buildOptions turns the parsed flags and the project's stevedore.yaml into
// the options of one build.
func buildOptions(cmd *cobra.Command, args []string, opts config.BuildOptions) (build.Options, error) {
	source := "."
	if len(args) > 0 {
		source = args[0]
	}
	source, err := files.ExpandPath(source)
	if err != nil {
		return build.Options{}, err
	}

	cfg, filename, err := config.Load(source)
	if err != nil {
		return build.Options{}, err
	}
	if filename != "" {
		console.Debug("Using options from %s", filename)
	}
	opts.Merge(cfg, cmd.Flags().Changed)
	if opts.Parallel < 1 {
		return build.Options{}, errors.ErrorInvalidParallelism
	}

	return build.Options{
		Source:       source,
		Dockerfile:   opts.Dockerfile,
		Services:     opts.Services,
		Mode:         opts.Mode(),
		EOL:          opts.EOLPolicy(),
		UseGitignore: !opts.NoGitignore,
		Parallel:     opts.Parallel,
	}, nil
}
