package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/workplan/pkg/iojson"
)

type LookupCmd struct {
	flags *Flags

	// flags
	jsonOutput bool
}

// NewLookupCmd creates a new lookup command.
func NewLookupCmd(flags *Flags) *LookupCmd {
	return &LookupCmd{flags: flags}
}

// Register adds the lookup command to the application.
func (cmd *LookupCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "lookup",
		Usage:     "List strategic goals and their aggregate objectives",
		UsageText: "workplan lookup [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines, one goal per line",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

type goalLine struct {
	Goal       string   `json:"goal"`
	Objectives []string `json:"objectives"`
}

func (cmd *LookupCmd) run(ctx context.Context, c *cli.Command) error {
	table, err := cmd.flags.App.LoadLookup()
	if err != nil {
		return err
	}

	out := c.Root().Writer
	for _, goal := range table.Goals() {
		objectives := table.Objectives(goal)
		if cmd.jsonOutput {
			if err := iojson.WriteLine(out, goalLine{Goal: goal, Objectives: objectives}); err != nil {
				return fmt.Errorf("encode goal: %w", err)
			}
			continue
		}

		_, _ = fmt.Fprintln(out, goal)
		for _, o := range objectives {
			_, _ = fmt.Fprintf(out, "  - %s\n", o)
		}
	}
	return nil
}
