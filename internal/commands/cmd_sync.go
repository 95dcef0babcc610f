package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/workplan/internal/core/mirror"
	"github.com/colonyops/workplan/internal/core/validate"
	"github.com/colonyops/workplan/internal/printer"
)

type SyncCmd struct {
	flags *Flags
}

// NewSyncCmd creates a new sync command.
func NewSyncCmd(flags *Flags) *SyncCmd {
	return &SyncCmd{flags: flags}
}

// Register adds the sync command to the application.
func (cmd *SyncCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "sync",
		Usage:     "Upload one file to the configured remote",
		UsageText: "workplan sync <local-file> <remote-path>",
		Description: `Creates or updates remote-path in the configured mirror backend with the
contents of local-file. Useful to re-send an artifact after a failed sync.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *SyncCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("expected <local-file> <remote-path>, got %d argument(s)", c.Args().Len())
	}
	local, remote := c.Args().Get(0), c.Args().Get(1)

	if err := validate.SyncArgs(local, remote); err != nil {
		return err
	}

	m := cmd.flags.App.Mirror
	conf, err := mirror.UpsertFile(ctx, m, local, remote)
	out := mirror.NewOutcome(m.Name(), remote, conf, err)
	if err != nil {
		return fmt.Errorf("sync %s: %w", local, err)
	}

	printer.Ctx(ctx).Successf("%s", out.Message)
	return nil
}
