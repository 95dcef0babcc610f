package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSecretsFiles_Single(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeTestFile(filepath.Join(dir, "secrets.yaml"), "token: abc\nrepository: acme/plans\n"))

	got, err := loadSecretsFiles(dir, []string{"secrets.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "abc", got["token"])
	assert.Equal(t, "acme/plans", got["repository"])
}

func TestLoadSecretsFiles_Multiple_MergeOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeTestFile(filepath.Join(dir, "base.yaml"), "token: old\nbranch: main\n"))
	require.NoError(t, writeTestFile(filepath.Join(dir, "override.yaml"), "token: new\n"))

	got, err := loadSecretsFiles(dir, []string{"base.yaml", "override.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "new", got["token"])
	assert.Equal(t, "main", got["branch"])
}

func TestLoadSecretsFiles_NestedMerge(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeTestFile(filepath.Join(dir, "a.yaml"), "sync:\n  github:\n    token: a\n    branch: main\n"))
	require.NoError(t, writeTestFile(filepath.Join(dir, "b.yaml"), "sync:\n  github:\n    token: b\n"))

	got, err := loadSecretsFiles(dir, []string{"a.yaml", "b.yaml"})
	require.NoError(t, err)

	github := got["sync"].(map[string]any)["github"].(map[string]any)
	assert.Equal(t, "b", github["token"])
	assert.Equal(t, "main", github["branch"])
}

func TestLoadSecretsFiles_AbsolutePath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "secrets.yaml")
	require.NoError(t, writeTestFile(file, "token: abs\n"))

	got, err := loadSecretsFiles("ignored", []string{file})
	require.NoError(t, err)
	assert.Equal(t, "abs", got["token"])
}

func TestLoadSecretsFiles_NotFound(t *testing.T) {
	_, err := loadSecretsFiles(t.TempDir(), []string{"missing.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read secrets file")
}

func TestLoadSecretsFiles_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeTestFile(filepath.Join(dir, "bad.yaml"), "token: [\n"))

	_, err := loadSecretsFiles(dir, []string{"bad.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse secrets file")
}

func TestMergeMaps_SecretsOverrideConfig(t *testing.T) {
	config := map[string]any{
		"data_dir": "/data",
		"github": map[string]any{
			"repository": "acme/plans",
			"token":      "",
		},
	}
	secrets := map[string]any{
		"github": map[string]any{
			"token": "s3cr3t",
		},
	}

	mergeMaps(config, secrets)

	assert.Equal(t, "/data", config["data_dir"])
	github := config["github"].(map[string]any)
	assert.Equal(t, "acme/plans", github["repository"])
	assert.Equal(t, "s3cr3t", github["token"])
}

func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
