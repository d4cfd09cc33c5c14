package harness

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/danforbes/dots/internal/compiler"
	"github.com/danforbes/dots/internal/frame"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Build and encode the synthetic runtime
//  2. Decode it through the full pipeline
//  3. Check the outcome against the expect clause
//  4. Evaluate assertions against the decoded metadata
//
// The returned error is reserved for harness failures (the scenario could
// not be encoded); decode failures are part of the Result.
func Run(scenario *Scenario) (*Result, error) {
	raw, err := scenario.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	result.RawSize = len(raw)

	md, err := compiler.DecodeMetadataWithOptions(raw, compiler.Options{Parallelism: scenario.Parallelism})
	result.Metadata = md
	result.DecodeErr = err

	slog.Debug("scenario decoded",
		"scenario", scenario.Name,
		"bytes", len(raw),
		"ok", err == nil)

	checkExpect(scenario.Expect, err, result)
	if err != nil {
		return result, nil
	}

	for _, msg := range EvaluateAssertions(md, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func checkExpect(expect *ExpectClause, err error, result *Result) {
	if expect == nil {
		if err != nil {
			result.AddError(fmt.Sprintf("decode failed: %v", err))
		}
		return
	}

	if err == nil {
		result.AddError(fmt.Sprintf("expected %s, decode succeeded", expect.Error))
		return
	}

	var me *frame.MetadataError
	if !errors.As(err, &me) {
		result.AddError(fmt.Sprintf("expected %s, got untyped error: %v", expect.Error, err))
		return
	}

	if string(me.Code) != expect.Error {
		result.AddError(fmt.Sprintf("expected %s, got %s: %s", expect.Error, me.Code, me.Message))
	}

	if expect.TypeID != nil {
		switch {
		case me.TypeID == nil:
			result.AddError(fmt.Sprintf("expected type id %d, error has none", *expect.TypeID))
		case *me.TypeID != *expect.TypeID:
			result.AddError(fmt.Sprintf("expected type id %d, got %d", *expect.TypeID, *me.TypeID))
		}
	}

	for _, k := range slices.Sorted(maps.Keys(expect.Details)) {
		if got := me.Details[k]; got != expect.Details[k] {
			result.AddError(fmt.Sprintf("expected detail %s=%q, got %q", k, expect.Details[k], got))
		}
	}
}
