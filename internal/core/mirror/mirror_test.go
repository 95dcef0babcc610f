package mirror

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memMirror struct {
	files map[string][]byte
	err   error
}

func (m *memMirror) Name() string { return "mem" }

func (m *memMirror) Upsert(_ context.Context, content []byte, remotePath string) (Confirmation, error) {
	if m.err != nil {
		return Confirmation{}, m.err
	}
	_, exists := m.files[remotePath]
	m.files[remotePath] = content
	return Confirmation{Path: remotePath, Created: !exists}, nil
}

func TestSyncError_Kinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		msg  string
	}{
		{"not configured", NotConfigured("token missing"), ErrNotConfigured, "remote sync not configured: token missing"},
		{"read", ReadFailed(500, "boom", nil), ErrRemoteReadFailed, "remote read failed: 500 - boom"},
		{"write", WriteFailed(422, "", nil), ErrRemoteWriteFailed, "remote write failed: 422"},
		{"timeout", ReadFailed(0, "", context.DeadlineExceeded), ErrRemoteReadFailed, "remote read failed: context deadline exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			assert.Equal(t, tt.msg, tt.err.Error())

			var syncErr *SyncError
			require.ErrorAs(t, tt.err, &syncErr)
		})
	}

	assert.True(t, IsTimeout(ReadFailed(0, "", context.DeadlineExceeded)))
	assert.False(t, errors.Is(WriteFailed(500, "", nil), ErrRemoteReadFailed))
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Upsert(context.Background(), []byte("x"), "a.txt")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "generated_reports/workplan_x.md", ReportPath("workplan_x.md"))
	assert.Equal(t, "annexes/a.pdf", AnnexPath("a.pdf"))
	assert.Equal(t, "Add master_log.xlsx", CommitMessage(LogPath, false))
	assert.Equal(t, "Update master_log.xlsx", CommitMessage(LogPath, true))

	p, err := CleanPath(`/reports\\a/../b.md`)
	require.NoError(t, err)
	assert.Equal(t, "reports/b.md", p)

	_, err = CleanPath("/")
	assert.Error(t, err)
}

func TestTimeouts_WithDefaults(t *testing.T) {
	got := Timeouts{Upload: 5}.WithDefaults()
	assert.Equal(t, DefaultCheckTimeout, got.Check)
	assert.EqualValues(t, 5, got.Upload)
}

func TestPush_Outcome(t *testing.T) {
	ctx := context.Background()
	m := &memMirror{files: map[string][]byte{}}

	first := Push(ctx, m, []byte("a"), "x.txt")
	assert.True(t, first.OK)
	assert.Equal(t, "Pushed to mem: x.txt", first.Message)

	second := Push(ctx, m, []byte("b"), "x.txt")
	assert.True(t, second.OK)
	assert.Equal(t, "Updated on mem: x.txt", second.Message)

	m.err = WriteFailed(500, "nope", nil)
	failed := Push(ctx, m, []byte("c"), "x.txt")
	assert.False(t, failed.OK)
	assert.Equal(t, "x.txt", failed.Path)
	assert.Contains(t, failed.Message, "remote write failed")
}

func TestUpsertFile(t *testing.T) {
	m := &memMirror{files: map[string][]byte{}}
	local := filepath.Join(t.TempDir(), "r.md")
	require.NoError(t, os.WriteFile(local, []byte("# r"), 0o600))

	conf, err := UpsertFile(context.Background(), m, local, "generated_reports/r.md")
	require.NoError(t, err)
	assert.True(t, conf.Created)
	assert.Equal(t, []byte("# r"), m.files["generated_reports/r.md"])

	_, err = UpsertFile(context.Background(), m, local+".missing", "x")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
