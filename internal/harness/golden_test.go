package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"option_result", "extrinsic_version", "unresolved_reference"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_Error(t *testing.T) {
	s := mustParse(t, `
name: dangling
description: x
types:
  - id: 0
    sequence: 4
`)
	result, err := Run(s)
	require.NoError(t, err)

	snap, err := Snapshot(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":{
		"code":"UNRESOLVED_TYPE_REFERENCE",
		"message":"UNRESOLVED_TYPE_REFERENCE: type 4 referenced by type 0 is not defined in the registry",
		"type_id":4}}`, string(snap))
}
