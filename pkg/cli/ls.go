package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/stevedore-dev/stevedore/pkg/build"
	"github.com/stevedore-dev/stevedore/pkg/config"
	"github.com/stevedore-dev/stevedore/pkg/console"
)

var listOpts config.BuildOptions

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls [SOURCE]",
		Aliases: []string{"list"},
		Short:   "List the files that would be sent for each service in SOURCE",
		Long: `List the files of the build context of every service of the project in
SOURCE, as "build" would archive them.
` + ignoreFilesHelp,
		Args: cobra.MaximumNArgs(1),
		RunE: listCommand,
	}
	addPlanningFlags(cmd, &listOpts)
	return cmd
}

func listCommand(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions(cmd, args, listOpts)
	if err != nil {
		return err
	}

	listings, err := build.Inspect(cmd.Context(), opts, console.ConsoleInstance)
	if err != nil {
		return err
	}
	for _, l := range listings {
		console.Output(fmt.Sprintf("%s (%s): %d files, %s, %s", l.Service, l.RootDir, l.Files, humanize.Bytes(uint64(l.Size)), l.Digest))
		for _, e := range l.Entries {
			name := e.Path
			if e.IsSymlink() {
				name += " -> " + e.Linkname
			}
			console.Output(fmt.Sprintf("  %s %8s  %s", e.Mode, humanize.Bytes(uint64(e.Size)), name))
		}
	}
	return nil
}
