package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danforbes/dots/internal/ir"
)

func TestTypes_ByID(t *testing.T) {
	out, _, err := execute(t, "types", writeSample(t), "0", "1", "8", "11")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "0: U8", lines[0])
	assert.Equal(t, "1: U32", lines[1])
	assert.Equal(t, "8: List [U8#0]", lines[2])
	assert.Equal(t, "11: Option<U32#1>", lines[3])
}

func TestTypes_EnumVariants(t *testing.T) {
	out, _, err := execute(t, "types", writeSample(t), "12")
	require.NoError(t, err)
	assert.Contains(t, out, "12: Enum sp_runtime::DispatchError\n")
	assert.Contains(t, out, "    0 Other()\n")
	assert.Contains(t, out, "    1 BadOrigin()\n")
}

func TestTypes_All(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "types", writeSample(t))
	require.NoError(t, err)

	var resp struct {
		Data []TypeEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 27)
	for i, e := range resp.Data {
		assert.Equal(t, uint32(i), e.ID)
	}
}

func TestTypes_KindFilter(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "types", writeSample(t), "--kind", "Enum")
	require.NoError(t, err)

	var resp struct {
		Data []TypeEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Data)
	for _, e := range resp.Data {
		assert.Equal(t, ir.KindEnum, e.Type.Type, "type %d", e.ID)
	}
}

func TestTypes_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		exit int
		code string
	}{
		{"unknown_id", []string{"999"}, ExitFailure, ErrCodeNotFound},
		{"bad_id", []string{"x"}, ExitCommandError, ErrCodeInput},
		{"bad_kind", []string{"--kind", "Float"}, ExitCommandError, ErrCodeInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--format", "json", "types", writeSample(t)}, tt.args...)
			out, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, tt.exit, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}
