package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/stevedore-dev/stevedore/pkg/cli"
	"github.com/stevedore-dev/stevedore/pkg/console"
)

func main() {
	cmd, err := cli.NewRootCommand()
	if err != nil {
		console.Fatal("%s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		console.Fatal("%s", err)
	}
}
