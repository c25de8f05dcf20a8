package cli

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/stevedore-dev/stevedore/pkg/build"
	"github.com/stevedore-dev/stevedore/pkg/config"
	"github.com/stevedore-dev/stevedore/pkg/console"
	"github.com/stevedore-dev/stevedore/pkg/util/files"
)

var buildOpts config.BuildOptions
var buildOutput string
var buildGzip bool

func newBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [SOURCE]",
		Short: "Assemble the build context of every service in SOURCE",
		Long: `Assemble the build context of every service of the project in SOURCE
(default: the current directory) and write one tar archive per service.

SOURCE holds either a docker-compose.yml file, or a Dockerfile, a
Dockerfile.template or a package.json for a single service named "main".
` + ignoreFilesHelp + eolHelp,
		Args: cobra.MaximumNArgs(1),
		RunE: buildCommand,
	}
	addPlanningFlags(cmd, &buildOpts)
	cmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Directory to write <service>.tar archives to, or - for stdout (single service)")
	cmd.Flags().BoolVar(&buildGzip, "gzip", false, "Compress archives with gzip")
	return cmd
}

func buildCommand(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions(cmd, args, buildOpts)
	if err != nil {
		return err
	}

	var out build.Output = build.DiscardOutput{}
	switch buildOutput {
	case "":
		console.Debug("No --output given, archives are not kept")
	case "-":
		out = &build.WriterOutput{W: cmd.OutOrStdout(), Gzip: buildGzip}
	default:
		dir, err := files.ExpandPath(buildOutput)
		if err != nil {
			return err
		}
		out = &build.DirOutput{Dir: dir, Gzip: buildGzip}
	}

	summary, err := build.Run(cmd.Context(), opts, out, console.ConsoleInstance)
	if summary != nil {
		for _, svc := range summary.Services {
			console.Info("Service %s: %d files, %s, %s", svc.Name, svc.Files, humanize.Bytes(uint64(svc.Size)), svc.Digest)
		}
		if len(summary.Services) > 1 {
			console.Info("Total: %s", humanize.Bytes(uint64(summary.TotalSize())))
		}
	}
	return err
}
