package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/workplan/internal/core/validate"
	model "github.com/colonyops/workplan/internal/core/workplan"
	"github.com/colonyops/workplan/internal/printer"
	"github.com/colonyops/workplan/pkg/iojson"
)

type SubmitCmd struct {
	flags  *Flags
	reader iojson.FileReader[model.AnswerTree]

	// flags
	strict     bool
	jsonOutput bool
}

// NewSubmitCmd creates a new submit command.
func NewSubmitCmd(flags *Flags) *SubmitCmd {
	return &SubmitCmd{flags: flags}
}

// Register adds the submit command to the application.
func (cmd *SubmitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "submit",
		Usage:     "Submit a workplan from a JSON answer file",
		UsageText: "workplan submit -f answers.json [--strict] [--json]",
		Description: `Reads an answer tree as JSON (from -f or piped stdin) and runs the same
submission as the interactive wizard: annexes, report, master log row and
remote sync.

With --strict the answers are checked against the lookup table first.`,
		Flags: []cli.Flag{
			cmd.reader.Flag(),
			&cli.BoolFlag{
				Name:        "strict",
				Usage:       "reject answers that do not match the lookup table",
				Destination: &cmd.strict,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the submission result as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SubmitCmd) run(ctx context.Context, c *cli.Command) error {
	app := cmd.flags.App

	tree, err := cmd.reader.Read()
	if err != nil {
		return cmd.fail(c, "read answers", err)
	}
	tree.Normalize()

	if cmd.strict {
		table, err := app.LoadLookup()
		if err != nil {
			return cmd.fail(c, "load lookup table", err)
		}
		if err := validate.Tree(&tree, table); err != nil {
			return cmd.fail(c, "invalid answers", err)
		}
	}

	res, err := app.Submissions.Submit(ctx, uuid.NewString(), &tree)
	if err != nil {
		return cmd.fail(c, "submit", err)
	}

	if cmd.jsonOutput {
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, newResultView(res)); err != nil {
			return err
		}
	} else {
		printResult(printer.Ctx(ctx), res)
	}

	if res.Err() != nil {
		return cli.Exit("", 1)
	}
	return nil
}

// fail reports err under msg. With --json the error is written as a JSON
// document on the error stream so consumers never parse plain text.
func (cmd *SubmitCmd) fail(c *cli.Command, msg string, err error) error {
	if !cmd.jsonOutput {
		return fmt.Errorf("%s: %w", msg, err)
	}

	data := map[string]any{"error": err.Error()}
	var fe criterio.FieldErrors
	if errors.As(err, &fe) {
		fields := make(map[string]string, len(fe))
		for _, e := range fe {
			fields[e.Field] = e.Err.Error()
		}
		data["fields"] = fields
	}

	if werr := iojson.WriteError(c.Root().ErrWriter, msg, data); werr != nil {
		return werr
	}
	return cli.Exit("", 1)
}
