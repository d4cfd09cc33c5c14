package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "dots", cmd.Use)
	assert.Contains(t, cmd.Long, "FRAME runtime metadata")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"decode", "validate", "inspect", "types", "test", "cache", "schema"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "cache", "parallelism", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestDecodeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	decodeCmd, _, err := cmd.Find([]string{"decode"})
	require.NoError(t, err)

	outputFlag := decodeCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)

	keyFlag := decodeCmd.Flags().Lookup("key")
	require.NotNil(t, keyFlag)
	assert.Equal(t, "", keyFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "schema")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConfigFile_SetsFormat(t *testing.T) {
	cfg := writeFile(t, "config.yaml", []byte("format: json\n"))

	out, _, err := execute(t, "--config", cfg, "schema")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestConfigFile_FlagWins(t *testing.T) {
	cfg := writeFile(t, "config.yaml", []byte("format: json\n"))

	out, _, err := execute(t, "--config", cfg, "--format", "text", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "#Metadata")
}

func TestConfigFile_DefaultLocation(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "dots"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, "dots", "config.yaml"), []byte("format: yaml\n"), 0o644))
	t.Setenv("XDG_CONFIG_HOME", home)

	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"schema"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "status: ok")
}

func TestConfigFile_ExplicitMissing(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "schema")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConfigFile_CacheKey(t *testing.T) {
	db := filepath.Join(t.TempDir(), "dots.db")
	cfg := writeFile(t, "config.yaml", []byte("cache: "+db+"\n"))
	input := writeSample(t)

	_, _, err := execute(t, "--config", cfg, "decode", input, "--key", "sample-1")
	require.NoError(t, err)

	out, _, err := execute(t, "--config", cfg, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "sample-1")
}
