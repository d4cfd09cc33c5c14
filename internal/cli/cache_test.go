package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danforbes/dots/internal/store"
)

// seedCache decodes the sample runtime into a fresh cache under each key.
func seedCache(t *testing.T, keys ...string) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "dots.db")
	input := writeSample(t)
	for _, k := range keys {
		_, _, err := execute(t, "--cache", db, "decode", input, "--key", k)
		require.NoError(t, err)
	}
	return db
}

func TestCache_RequiresPath(t *testing.T) {
	out, _, err := execute(t, "cache", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "no cache configured")
}

func TestCache_ListEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "dots.db")
	out, _, err := execute(t, "--cache", db, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache is empty.")
}

func TestCache_ListJSON(t *testing.T) {
	db := seedCache(t, "sample-1", "sample-2")

	out, _, err := execute(t, "--cache", db, "--format", "json", "cache", "list")
	require.NoError(t, err)

	var resp struct {
		Data []store.Entry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "sample-1", resp.Data[0].Key)
	assert.Equal(t, "sample-2", resp.Data[1].Key)
	assert.Equal(t, resp.Data[0].Hash, resp.Data[1].Hash)
	assert.Positive(t, resp.Data[0].RawSize)
}

func TestCache_ListText(t *testing.T) {
	db := seedCache(t, "sample-1")

	out, _, err := execute(t, "--cache", db, "cache", "list")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "sample-1  "), out)
	assert.Contains(t, out, " bytes ")
}

func TestCache_Delete(t *testing.T) {
	db := seedCache(t, "sample-1", "sample-2")

	out, _, err := execute(t, "--cache", db, "cache", "delete", "sample-1")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ deleted sample-1")

	out, _, err = execute(t, "--cache", db, "cache", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "sample-1")
	assert.Contains(t, out, "sample-2")
}

func TestCache_DeleteMissing(t *testing.T) {
	db := seedCache(t)

	out, _, err := execute(t, "--cache", db, "--format", "json", "cache", "delete", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestCache_Clear(t *testing.T) {
	db := seedCache(t, "a-1", "b-2", "c-3")

	out, _, err := execute(t, "--cache", db, "--format", "json", "cache", "clear")
	require.NoError(t, err)

	var resp struct {
		Data map[string]int64 `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, int64(3), resp.Data["deleted"])

	out, _, err = execute(t, "--cache", db, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache is empty.")
}

func TestCache_Key(t *testing.T) {
	out, _, err := execute(t, "cache", "key", "polkadot", "--spec-version", "1002000")
	require.NoError(t, err)
	assert.Equal(t, "polkadot-1002000\n", out)
	assert.Equal(t, store.Key("polkadot", 1002000), strings.TrimSpace(out))
}
