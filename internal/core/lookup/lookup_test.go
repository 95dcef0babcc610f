package lookup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeXLSX(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "alignment.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestNew_Ordering(t *testing.T) {
	table := New([]Row{
		{Goal: "Resilience", Objective: "Harden systems"},
		{Goal: "Access", Objective: "Open data"},
		{Goal: "Access", Objective: "Publish APIs"},
		{Goal: "Access", Objective: "Open data"},
		{Goal: "  ", Objective: "Orphan"},
		{Goal: "Growth", Objective: ""},
	})

	assert.Equal(t, []string{"Access", "Growth", "Resilience"}, table.Goals())
	assert.Equal(t, []string{"Open data", "Publish APIs"}, table.Objectives("Access"))
	assert.Empty(t, table.Objectives("Growth"))
	assert.Empty(t, table.Objectives("Unknown"))
}

func TestLoad_XLSX(t *testing.T) {
	path := writeXLSX(t, [][]any{
		{"id", "strategic_goal", "aggregate_divisional_objectives"},
		{1, "Growth", "Launch pilot"},
		{2, "Growth", "Expand market"},
		{3, "Access"},
	})

	table, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Access", "Growth"}, table.Goals())
	assert.Equal(t, []string{"Launch pilot", "Expand market"}, table.Objectives("Growth"))
}

func TestLoad_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alignment.csv")
	data := "strategic_goal,aggregate_divisional_objectives\nGrowth,Expand market\nAccess,Open data\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Access", "Growth"}, table.Goals())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.xlsx"))

		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Empty(t, cfgErr.Column)
	})

	tests := []struct {
		name   string
		header []any
		column string
	}{
		{"no goal column", []any{"goal", "aggregate_divisional_objectives"}, GoalColumn},
		{"no objective column", []any{"strategic_goal", "objective"}, ObjectiveColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeXLSX(t, [][]any{tt.header, {"a", "b"}}))

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.column, cfgErr.Column)
			assert.Contains(t, err.Error(), tt.column)
		})
	}
}
