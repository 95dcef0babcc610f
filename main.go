package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/workplan/internal/commands"
	"github.com/colonyops/workplan/internal/core/config"
	"github.com/colonyops/workplan/internal/core/logging"
	"github.com/colonyops/workplan/internal/core/styles"
	"github.com/colonyops/workplan/internal/data/datadir"
	"github.com/colonyops/workplan/internal/printer"
	"github.com/colonyops/workplan/internal/workplan"
	"github.com/colonyops/workplan/pkg/executil"
	"github.com/colonyops/workplan/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var logCloser func()

	flags := &commands.Flags{}
	fillCmd := commands.NewFillCmd(flags)

	app := &cli.Command{
		Name:      "workplan",
		Usage:     "Collect divisional workplans and publish them",
		UsageText: "workplan [global options] command [command options]",
		Description: `Workplan walks a division through its annual workplan: cover page, strategic
goals, objectives, activities, metrics and annexes. On submit it writes a
report, stores the annexes, appends a row to the master log and mirrors each
artifact to the configured remote.

Run 'workplan' with no arguments to start the interactive form.`,
		Version: build(),
		Flags:   flags.GlobalFlags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Until the data directory is known, warnings go to stderr.
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Apply(flags.Overrides()); err != nil {
				return ctx, fmt.Errorf("apply overrides: %w", err)
			}
			flags.Config = cfg

			dirs, err := datadir.NewResolver(cfg.DataDir).Resolve()
			if err != nil {
				return ctx, fmt.Errorf("resolve data directory: %w", err)
			}

			logFile := flags.LogFile
			if logFile == "" {
				logFile = dirs.LogFile()
			}
			logger, closer, err := logutils.New(cfg.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			logging.Install(logger)
			logCloser = closer

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.TUI.Theme)
			styles.SetTheme(palette)

			flags.App, err = workplan.NewApp(cfg, dirs, &executil.RealExecutor{})
			if err != nil {
				return ctx, err
			}

			p := printer.New(c.Root().ErrWriter)
			if dirs.Fallback {
				p.Warnf("Data directory %s is not writable; using %s for this session", cfg.DataDir, dirs.Root)
			}

			return printer.NewContext(ctx, p), nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = fillCmd.Register(app)
	app = commands.NewSubmitCmd(flags).Register(app)
	app = commands.NewLookupCmd(flags).Register(app)
	app = commands.NewLogCmd(flags).Register(app)
	app = commands.NewSyncCmd(flags).Register(app)
	app = commands.NewDraftsCmd(flags).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	// Register fill flags on root command
	app.Flags = append(app.Flags, fillCmd.Flags()...)

	// Set fill as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'workplan --help' for usage", c.Args().First())
		}
		return fillCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
