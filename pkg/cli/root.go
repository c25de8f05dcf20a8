package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stevedore-dev/stevedore/pkg/config"
	"github.com/stevedore-dev/stevedore/pkg/console"
	"github.com/stevedore-dev/stevedore/pkg/global"
)

func NewRootCommand() (*cobra.Command, error) {
	rootCmd := cobra.Command{
		Use:     "stevedore",
		Short:   "Assemble Docker build contexts for a remote image builder",
		Version: fmt.Sprintf("%s (built %s)", global.Version, global.BuildTime),
		// This stops errors being printed because we print them in cmd/stevedore/main.go
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if v := os.Getenv(config.LogLevelEnvVar); v != "" {
				level, err := console.ParseLevel(v)
				if err != nil {
					console.Warn("Ignoring %s=%q: %s", config.LogLevelEnvVar, v, err)
				} else {
					console.SetLevel(level)
				}
			}
			if global.Verbose {
				console.SetLevel(console.DebugLevel)
			}
			if global.NoColor || !console.IsTTY(os.Stderr) {
				console.SetColor(false)
			}
			cmd.SilenceUsage = true
		},
		SilenceErrors: true,
	}
	setPersistentFlags(&rootCmd)

	rootCmd.AddCommand(
		newBuildCommand(),
		newListCommand(),
	)

	return &rootCmd, nil
}

func setPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVar(&global.NoColor, "no-color", false, "Disable colored output")
}
