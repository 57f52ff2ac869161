package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/Makepad-fr/tasks/internal/cli"
	"github.com/Makepad-fr/tasks/internal/config"
	"github.com/Makepad-fr/tasks/internal/logging"
	"github.com/Makepad-fr/tasks/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand) layered over config files and env.
	fs := flag.NewFlagSet("tasks", flag.ContinueOnError)
	fs.Usage = func() { cli.PrintHelp(os.Stderr) }
	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		ui.Fail(os.Stderr, "config: "+err.Error())
		os.Exit(2)
	}

	ui.SetTheme(cfg.Theme)
	logger := logging.New(os.Stderr, logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Timestamps: cfg.LogTimestamps,
		Prefix:     "tasks",
	})

	// Hand the remaining args to the CLI runner.
	args := fs.Args()
	if len(args) == 0 {
		cli.PrintHelp(os.Stderr)
		os.Exit(2)
	}

	code := cli.Run(args, cli.Options{
		Group:  cfg.Group,
		Logger: logger,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
