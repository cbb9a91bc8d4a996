package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"

	"github.com/matzehuels/thankstars/internal/cli"
	"github.com/matzehuels/thankstars/pkg/buildinfo"
)

func main() {
	// A .env in the working directory may supply GITHUB_TOKEN and
	// THANKS_STARS_* settings; a missing file is fine.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	return fang.Execute(ctx, c.RootCommand(),
		fang.WithVersion(buildinfo.Version),
		fang.WithCommit(buildinfo.Commit),
	)
}
