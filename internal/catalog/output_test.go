package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfim/fandomap/internal/fandom"
)

func TestWriteJSON(t *testing.T) {
	res, err := Extract(context.Background(), testCircles(), testEngine(t), Options{Logger: quietLogger()})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, WriteJSON(dir, res))

	for _, name := range []string{CirclesFile, FandomsFile, StandsFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	data, err := os.ReadFile(filepath.Join(dir, StandsFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n    {\n        \"code\": \"B-1a\""), "four-space indent")

	f, err := os.Open(filepath.Join(dir, FandomsFile))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	reg, err := fandom.LoadRecords(f)
	require.NoError(t, err)
	assert.Equal(t, len(res.Fandoms), reg.Len())
	assert.NoError(t, reg.Validate())
}

func TestWriteJSON_EmptyResult(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteJSON(dir, &Result{}))

	for _, name := range []string{CirclesFile, FandomsFile, StandsFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data), name)
	}
}

func TestWriteJSON_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644)) // #nosec G306

	err := WriteJSON(filepath.Join(file, "sub"), &Result{})
	assert.Error(t, err)
}
