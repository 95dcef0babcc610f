package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/workplan/internal/core/config"
	model "github.com/colonyops/workplan/internal/core/workplan"
	"github.com/colonyops/workplan/internal/data/datadir"
	"github.com/colonyops/workplan/internal/data/stores"
	"github.com/colonyops/workplan/internal/printer"
	"github.com/colonyops/workplan/internal/workplan"
	"github.com/colonyops/workplan/pkg/executil"
)

const lookupCSV = `strategic_goal,aggregate_divisional_objectives
Growth,Expand market
Growth,Retain clients
Access,Open data
`

type harness struct {
	flags  *Flags
	out    bytes.Buffer
	errOut bytes.Buffer
	dir    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	lookupFile := filepath.Join(dir, "alignment.csv")
	require.NoError(t, os.WriteFile(lookupFile, []byte(lookupCSV), 0o644))

	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.LookupFile = lookupFile
	cfg.Sync.Enabled = false

	app, err := workplan.NewApp(&cfg, datadir.Dirs{Root: cfg.DataDir}, &executil.RecordingExecutor{})
	require.NoError(t, err)

	return &harness{flags: &Flags{Config: &cfg, App: app}, dir: dir}
}

func (h *harness) run(t *testing.T, register func(*cli.Command) *cli.Command, args ...string) error {
	t.Helper()

	h.out.Reset()
	h.errOut.Reset()
	root := register(&cli.Command{
		Name:           "workplan",
		Writer:         &h.out,
		ErrWriter:      &h.errOut,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	})

	ctx := printer.NewContext(context.Background(), printer.New(&h.errOut))
	return root.Run(ctx, append([]string{"workplan"}, args...))
}

func TestLookupCmd(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, NewLookupCmd(h.flags).Register, "lookup"))
	assert.Equal(t, "Access\n  - Open data\nGrowth\n  - Expand market\n  - Retain clients\n", h.out.String())

	require.NoError(t, h.run(t, NewLookupCmd(h.flags).Register, "lookup", "--json"))
	lines := strings.Split(strings.TrimSpace(h.out.String()), "\n")
	require.Len(t, lines, 2)

	var g goalLine
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &g))
	assert.Equal(t, goalLine{Goal: "Growth", Objectives: []string{"Expand market", "Retain clients"}}, g)
}

func TestSubmitAndLogCmd(t *testing.T) {
	h := newHarness(t)

	answers := filepath.Join(h.dir, "answers.json")
	require.NoError(t, os.WriteFile(answers, []byte(`{
		"cover": {"division": "Research"},
		"selected_goals": ["Growth"],
		"aggregate_objectives": [{"key": "Growth", "value": ["Expand market"]}]
	}`), 0o644))

	require.NoError(t, h.run(t, NewSubmitCmd(h.flags).Register, "submit", "-f", answers, "--strict", "--json"))

	var res resultView
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &res))
	assert.True(t, res.OK)
	assert.NotEmpty(t, res.SubmissionID)
	assert.FileExists(t, res.Report.Path)
	assert.True(t, strings.HasPrefix(res.Report.Name, "workplan_Research_"))
	assert.False(t, res.Report.Mirror.OK)
	assert.FileExists(t, res.Log.Path)

	require.NoError(t, h.run(t, NewLogCmd(h.flags).Register, "log"))
	assert.Contains(t, h.out.String(), "DIVISION")
	assert.Contains(t, h.out.String(), "Research")

	require.NoError(t, h.run(t, NewLogCmd(h.flags).Register, "log", "--json"))
	var line logLine
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &line))
	assert.Equal(t, "Growth", line.Goals)
	assert.Contains(t, line.Data, `"division":"Research"`)
}

func TestSubmitCmd_StrictRejects(t *testing.T) {
	h := newHarness(t)

	answers := filepath.Join(h.dir, "answers.json")
	require.NoError(t, os.WriteFile(answers, []byte(`{"selected_goals": ["Moonshot"]}`), 0o644))

	err := h.run(t, NewSubmitCmd(h.flags).Register, "submit", "-f", answers, "--strict")
	require.ErrorContains(t, err, "invalid answers")

	_, statErr := os.Stat(h.flags.App.MasterLog.Path())
	assert.True(t, os.IsNotExist(statErr), "nothing is logged when strict validation fails")
}

func TestSubmitCmd_JSONErrors(t *testing.T) {
	h := newHarness(t)

	answers := filepath.Join(h.dir, "answers.json")
	require.NoError(t, os.WriteFile(answers, []byte(`{"selected_goals": ["Moonshot"]}`), 0o644))

	err := h.run(t, NewSubmitCmd(h.flags).Register, "submit", "-f", answers, "--strict", "--json")
	var exit cli.ExitCoder
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.ExitCode())
	assert.Empty(t, h.out.String())

	var doc struct {
		Message string `json:"message"`
		Data    struct {
			Fields map[string]string `json:"fields"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(h.errOut.Bytes(), &doc))
	assert.Equal(t, "invalid answers", doc.Message)
	assert.Contains(t, doc.Data.Fields, "cover.division")
	assert.Contains(t, doc.Data.Fields, "selected_goals[0]")

	err = h.run(t, NewSubmitCmd(h.flags).Register, "submit", "-f", filepath.Join(h.dir, "missing.json"), "--json")
	require.ErrorAs(t, err, &exit)
	require.NoError(t, json.Unmarshal(h.errOut.Bytes(), &doc))
	assert.Equal(t, "read answers", doc.Message)
}

func TestLogCmd_Empty(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, NewLogCmd(h.flags).Register, "log"))
	assert.Empty(t, h.out.String())
	assert.Contains(t, h.errOut.String(), "No submissions logged")
}

func TestSyncCmd(t *testing.T) {
	h := newHarness(t)

	file := filepath.Join(h.dir, "a.md")
	require.NoError(t, os.WriteFile(file, []byte("# a"), 0o644))

	err := h.run(t, NewSyncCmd(h.flags).Register, "sync", file)
	assert.ErrorContains(t, err, "expected <local-file> <remote-path>")

	err = h.run(t, NewSyncCmd(h.flags).Register, "sync", file, "generated_reports/a.md")
	assert.ErrorContains(t, err, "not configured")

	err = h.run(t, NewSyncCmd(h.flags).Register, "sync", filepath.Join(h.dir, "missing.md"), "x.md")
	assert.Error(t, err)
}

func TestDraftsCmd(t *testing.T) {
	h := newHarness(t)
	app := h.flags.App

	table, err := app.LoadLookup()
	require.NoError(t, err)
	s, err := app.NewSession(table, "")
	require.NoError(t, err)
	s.Machine.ApplyCover(model.Cover{Division: "Research"})

	require.NoError(t, h.run(t, NewDraftsCmd(h.flags).Register, "drafts", "ls"))
	assert.Contains(t, h.out.String(), s.ID)
	assert.Contains(t, h.out.String(), "Research")

	require.NoError(t, h.run(t, NewDraftsCmd(h.flags).Register, "drafts", "rm", s.ID))
	_, err = app.Drafts.Get(s.ID)
	assert.ErrorIs(t, err, stores.ErrDraftNotFound)

	h.flags.App.Drafts = nil
	err = h.run(t, NewDraftsCmd(h.flags).Register, "drafts", "ls")
	assert.ErrorIs(t, err, errDraftsDisabled)
}

func TestConfigValidateCmd(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, NewConfigValidateCmd(h.flags).Register, "config", "validate", "--format", "json"))

	var out struct {
		Valid    bool `json:"valid"`
		Warnings []struct {
			Category string `json:"category"`
		} `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &out))
	assert.True(t, out.Valid)
	require.NotEmpty(t, out.Warnings)
	assert.Equal(t, "Sync", out.Warnings[0].Category)

	h.flags.Config.LookupFile = filepath.Join(h.dir, "missing.xlsx")
	err := h.run(t, NewConfigValidateCmd(h.flags).Register, "config", "validate")
	require.Error(t, err)
	assert.Contains(t, h.errOut.String(), "lookup_file")
}
