package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/workplan/pkg/iojson"
)

type LogCmd struct {
	flags *Flags

	// flags
	jsonOutput bool
	limit      int
}

// NewLogCmd creates a new log command.
func NewLogCmd(flags *Flags) *LogCmd {
	return &LogCmd{flags: flags}
}

// Register adds the log command to the application.
func (cmd *LogCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "log",
		Usage:     "List submissions recorded in the master log",
		UsageText: "workplan log [--limit n] [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines including the answer data",
				Destination: &cmd.jsonOutput,
			},
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "show only the most recent n rows (0 for all)",
				Destination: &cmd.limit,
			},
		},
		Action: cmd.run,
	})

	return app
}

type logLine struct {
	Timestamp string `json:"timestamp"`
	Division  string `json:"division"`
	Goals     string `json:"goals"`
	Data      string `json:"data"`
}

func (cmd *LogCmd) run(ctx context.Context, c *cli.Command) error {
	rows, err := cmd.flags.App.MasterLog.Rows()
	if err != nil {
		return fmt.Errorf("read master log: %w", err)
	}
	if cmd.limit > 0 && len(rows) > cmd.limit {
		rows = rows[len(rows)-cmd.limit:]
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, r := range rows {
			line := logLine{Timestamp: r.Timestamp.Format(time.RFC3339), Division: r.Division, Goals: r.Goals, Data: r.Data}
			if err := iojson.WriteLine(out, line); err != nil {
				return fmt.Errorf("encode row: %w", err)
			}
		}
		return nil
	}

	if len(rows) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "No submissions logged")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIMESTAMP\tDIVISION\tGOALS")
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.Timestamp.Format(time.DateTime), r.Division, r.Goals)
	}
	return w.Flush()
}
