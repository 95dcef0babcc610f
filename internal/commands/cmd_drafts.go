package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/workplan/internal/core/wizard"
	"github.com/colonyops/workplan/internal/printer"
)

type DraftsCmd struct {
	flags *Flags
}

// NewDraftsCmd creates a new drafts command.
func NewDraftsCmd(flags *Flags) *DraftsCmd {
	return &DraftsCmd{flags: flags}
}

// Register adds the drafts command to the application.
func (cmd *DraftsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "drafts",
		Usage: "Manage saved in-progress workplans",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List drafts, newest first",
				UsageText: "workplan drafts ls",
				Action:    cmd.runList,
			},
			{
				Name:      "rm",
				Usage:     "Delete a draft",
				UsageText: "workplan drafts rm <id>",
				Action:    cmd.runRemove,
			},
		},
	})

	return app
}

var errDraftsDisabled = errors.New("drafts are disabled (drafts.enabled=false)")

func (cmd *DraftsCmd) runList(ctx context.Context, c *cli.Command) error {
	store := cmd.flags.App.Drafts
	if store == nil {
		return errDraftsDisabled
	}

	drafts, err := store.List()
	if err != nil {
		return fmt.Errorf("list drafts: %w", err)
	}
	if len(drafts) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "No drafts found")
		return nil
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDIVISION\tSTEP\tUPDATED")
	for _, d := range drafts {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Tree.Cover.Division, wizard.Step(d.Step).Title(), d.UpdatedAt.Format(time.DateTime))
	}
	return w.Flush()
}

func (cmd *DraftsCmd) runRemove(ctx context.Context, c *cli.Command) error {
	store := cmd.flags.App.Drafts
	if store == nil {
		return errDraftsDisabled
	}
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected <id>")
	}

	id := c.Args().First()
	if err := store.Delete(id); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	printer.Ctx(ctx).Successf("Deleted draft %s", id)
	return nil
}
