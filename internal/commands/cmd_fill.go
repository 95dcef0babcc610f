package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/workplan/internal/core/styles"
	"github.com/colonyops/workplan/internal/printer"
	"github.com/colonyops/workplan/internal/tui"
)

type FillCmd struct {
	flags *Flags

	// flags
	resume  string
	preview bool
}

// NewFillCmd creates a new fill command.
func NewFillCmd(flags *Flags) *FillCmd {
	return &FillCmd{flags: flags}
}

// Flags returns the fill flags so the root command can run fill by default.
func (cmd *FillCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "resume",
			Usage:       "resume the draft with this submission ID",
			Destination: &cmd.resume,
		},
		&cli.BoolFlag{
			Name:        "preview",
			Usage:       "show the rendered report and confirm before submitting",
			Destination: &cmd.preview,
		},
	}
}

// Register adds the fill command to the application.
func (cmd *FillCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "fill",
		Usage:     "Fill in a divisional workplan step by step",
		UsageText: "workplan fill [--resume <id>] [--preview]",
		Description: `Walks through the nine workplan steps, then stores the report, annexes and
a master log row. Answers are saved as a draft after every step; pick
"Save draft & quit" and come back later with --resume.`,
		Flags:  cmd.Flags(),
		Action: cmd.Run,
	})

	return app
}

func (cmd *FillCmd) Run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)
	app := cmd.flags.App

	table, err := app.LoadLookup()
	if err != nil {
		return err
	}

	s, err := app.NewSession(table, cmd.resume)
	if err != nil {
		return err
	}
	if cmd.resume != "" {
		p.Infof("Resuming %s at %s", s.ID, s.Machine.Step())
	}

	runner := tui.NewRunner(s, tui.ReportPreview, c.Root().ErrWriter)
	action, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if action == tui.ActionQuit {
		if app.Drafts != nil {
			p.Infof("Draft saved as %s", s.ID)
			p.Printf("  Resume with: workplan fill --resume %s", s.ID)
		}
		return nil
	}

	if cmd.preview {
		if err := tui.ReportPreview(ctx, s.Machine.Tree()); err != nil {
			return err
		}
		confirmed := true
		err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().Title("Submit this workplan?").Value(&confirmed),
		)).WithTheme(styles.FormTheme()).RunWithContext(ctx)
		if err != nil {
			return fmt.Errorf("confirm submit: %w", err)
		}
		if !confirmed {
			p.Infof("Not submitted; draft kept as %s", s.ID)
			return nil
		}
	}

	res, err := s.Submit(ctx, app.Submissions)
	if err != nil {
		p.Errorf("%v", err)
		p.Printf("  Your answers are kept; resume with: workplan fill --resume %s", s.ID)
		return cli.Exit("", 1)
	}

	printResult(p, res)
	if res.Err() != nil {
		return cli.Exit("", 1)
	}
	return nil
}
