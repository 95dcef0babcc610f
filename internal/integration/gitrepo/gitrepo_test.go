package gitrepo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/workplan/internal/core/mirror"
)

func commitMessages(t *testing.T, path string) []string {
	t.Helper()

	repo, err := git.PlainOpen(path)
	require.NoError(t, err)
	iter, err := repo.Log(&git.LogOptions{})
	require.NoError(t, err)

	var msgs []string
	require.NoError(t, iter.ForEach(func(c *object.Commit) error {
		msgs = append(msgs, c.Message)
		return nil
	}))
	return msgs
}

func TestUpsert_NotConfigured(t *testing.T) {
	_, err := New(Config{}).Upsert(context.Background(), []byte("x"), "a.txt")
	assert.ErrorIs(t, err, mirror.ErrNotConfigured)
}

func TestUpsert_CreateThenUpdate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mirror")
	m := New(Config{Path: dir})
	ctx := context.Background()

	first, err := m.Upsert(ctx, []byte("v1"), "generated_reports/a.md")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.NotEmpty(t, first.Revision)

	second, err := m.Upsert(ctx, []byte("v2"), "generated_reports/a.md")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.NotEqual(t, first.Revision, second.Revision)

	data, err := os.ReadFile(filepath.Join(dir, "generated_reports", "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	assert.Equal(t, []string{"Update generated_reports/a.md", "Add generated_reports/a.md"}, commitMessages(t, dir))

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, plumbing.NewBranchReferenceName("main"), head.Name())
}

func TestUpsert_IdenticalContentSucceeds(t *testing.T) {
	m := New(Config{Path: t.TempDir()})

	for range 2 {
		_, err := m.Upsert(context.Background(), []byte("same"), mirror.LogPath)
		require.NoError(t, err)
	}
}

func TestUpsert_PushesToRemote(t *testing.T) {
	remote := filepath.Join(t.TempDir(), "remote.git")
	_, err := git.PlainInit(remote, true)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "mirror")
	m := New(Config{Path: dir, RemoteURL: remote, Push: true})

	conf, err := m.Upsert(context.Background(), []byte("row"), mirror.LogPath)
	require.NoError(t, err)

	bare, err := git.PlainOpen(remote)
	require.NoError(t, err)
	ref, err := bare.Reference(plumbing.NewBranchReferenceName("main"), true)
	require.NoError(t, err)
	assert.Equal(t, conf.Revision, ref.Hash().String())
}
