package stores

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/colonyops/workplan/internal/core/logging"
	"github.com/colonyops/workplan/internal/core/mirror"
)

// Log columns, in the order a new log is created with.
const (
	ColTimestamp = "timestamp"
	ColDivision  = "division"
	ColGoals     = "goals"
	ColData      = "data"
)

var logColumns = []string{ColTimestamp, ColDivision, ColGoals, ColData}

const logSheet = "Sheet1"

// maxCellChars is the xlsx limit on characters in one cell.
const maxCellChars = excelize.TotalCellChars

// LogRow is one submission in the master log.
type LogRow struct {
	Timestamp time.Time
	Division  string
	Goals     string
	Data      string
}

func (r LogRow) values() map[string]string {
	return map[string]string{
		ColTimestamp: r.Timestamp.Format(time.RFC3339),
		ColDivision:  r.Division,
		ColGoals:     r.Goals,
		ColData:      r.Data,
	}
}

// AppendResult reports where the log was written and what the mirror did.
type AppendResult struct {
	Path     string
	Fallback bool
	Mirror   mirror.Outcome
}

// MasterLog is the append-only submission table stored as an xlsx workbook.
// Appends are read-merge-write; concurrent writers from other processes can
// lose rows.
type MasterLog struct {
	mu          sync.Mutex
	path        string
	fallbackDir string
	mirror      mirror.Mirror
	write       writeFileFunc
	log         zerolog.Logger
}

// NewMasterLog returns a log at path. fallbackDir receives the log when path
// cannot be written for lack of permission.
func NewMasterLog(path, fallbackDir string, m mirror.Mirror) *MasterLog {
	if m == nil {
		m = mirror.Disabled{}
	}
	return &MasterLog{
		path:        path,
		fallbackDir: fallbackDir,
		mirror:      m,
		write:       writeAtomic,
		log:         logging.Component("masterlog"),
	}
}

// Path returns the primary log path.
func (l *MasterLog) Path() string { return l.path }

// Append adds row after every existing row and mirrors the resulting file. A
// mirror failure is reported in the result, never as an error.
func (l *MasterLog) Append(ctx context.Context, row LogRow) (AppendResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	src := l.source()
	table, err := readTable(src)
	if err != nil {
		l.log.Warn().Ctx(ctx).Err(err).Str("path", src).Msg("master log unreadable, starting a new one")
		table = sheetTable{}
	}
	if n := utf8.RuneCountInString(row.Data); n > maxCellChars {
		l.log.Warn().Ctx(ctx).Int("chars", n).Msg("answer data exceeds the cell limit, truncating")
		row.Data = string([]rune(row.Data)[:maxCellChars])
	}
	table.append(row.values())

	data, err := table.xlsx()
	if err != nil {
		return AppendResult{}, &PersistenceError{Op: "encode master log", Path: l.path, Err: err}
	}

	path, fallback, err := writeWithFallback(l.write, "write master log", l.path, l.fallbackDir, data)
	if err != nil {
		return AppendResult{}, err
	}
	if fallback {
		l.log.Warn().Ctx(ctx).Str("path", path).Msg("master log written to fallback dir")
	}

	return AppendResult{
		Path:     path,
		Fallback: fallback,
		Mirror:   mirror.Push(ctx, l.mirror, data, mirror.LogPath),
	}, nil
}

// source returns the copy holding the latest rows: the fallback copy when it
// is at least as new as the primary, otherwise the primary.
func (l *MasterLog) source() string {
	if l.fallbackDir == "" {
		return l.path
	}
	fallback := filepath.Join(l.fallbackDir, filepath.Base(l.path))
	fb, err := os.Stat(fallback)
	if err != nil {
		return l.path
	}
	primary, err := os.Stat(l.path)
	if err != nil || !fb.ModTime().Before(primary.ModTime()) {
		return fallback
	}
	return l.path
}

// Rows returns the logged submissions in file order. A missing log is empty.
func (l *MasterLog) Rows() ([]LogRow, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	table, err := readTable(l.source())
	if err != nil {
		return nil, fmt.Errorf("read master log: %w", err)
	}

	rows := make([]LogRow, 0, len(table.rows))
	for _, rec := range table.rows {
		row := LogRow{
			Division: table.get(rec, ColDivision),
			Goals:    table.get(rec, ColGoals),
			Data:     table.get(rec, ColData),
		}
		// unparseable timestamps from older logs stay zero
		row.Timestamp, _ = time.Parse(time.RFC3339, table.get(rec, ColTimestamp))
		rows = append(rows, row)
	}
	return rows, nil
}

// sheetTable is a header row plus records. Columns written by other tools are
// kept as-is.
type sheetTable struct {
	header []string
	rows   [][]string
}

func readTable(path string) (sheetTable, error) {
	f, err := excelize.OpenFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return sheetTable{}, nil
	}
	if err != nil {
		return sheetTable{}, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return sheetTable{}, errors.New("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return sheetTable{}, err
	}
	if len(records) == 0 {
		return sheetTable{}, nil
	}
	return sheetTable{header: records[0], rows: records[1:]}, nil
}

func (t *sheetTable) column(name string) int {
	return slices.IndexFunc(t.header, func(h string) bool {
		return strings.EqualFold(strings.TrimSpace(h), name)
	})
}

func (t *sheetTable) get(rec []string, name string) string {
	i := t.column(name)
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func (t *sheetTable) append(values map[string]string) {
	for _, c := range logColumns {
		if t.column(c) < 0 {
			t.header = append(t.header, c)
		}
	}
	rec := make([]string, len(t.header))
	for name, v := range values {
		rec[t.column(name)] = v
	}
	t.rows = append(t.rows, rec)
}

func (t *sheetTable) xlsx() ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, rec := range append([][]string{t.header}, t.rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(rec))
		for j, v := range rec {
			values[j] = v
		}
		if err := f.SetSheetRow(logSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
