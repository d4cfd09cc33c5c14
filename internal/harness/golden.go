package harness

import (
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/danforbes/dots/internal/frame"
	"github.com/danforbes/dots/internal/ir"
)

type errorSnapshot struct {
	Error struct {
		Code    string  `json:"code"`
		Message string  `json:"message"`
		TypeID  *uint32 `json:"type_id"`
	} `json:"error"`
}

// Snapshot renders a result for golden comparison: the canonical JSON of
// the decoded metadata, or of the error when decode failed.
func Snapshot(result *Result) ([]byte, error) {
	if result.DecodeErr == nil {
		return ir.MarshalCanonical(result.Metadata)
	}

	var snap errorSnapshot
	snap.Error.Message = result.DecodeErr.Error()
	var me *frame.MetadataError
	if errors.As(result.DecodeErr, &me) {
		snap.Error.Code = string(me.Code)
		snap.Error.TypeID = me.TypeID
	}
	return ir.MarshalCanonical(snap)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)

	return nil
}
