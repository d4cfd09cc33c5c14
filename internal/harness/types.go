package harness

import (
	"github.com/danforbes/dots/internal/ir"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Metadata is the decoded output; nil when decode failed.
	Metadata *ir.Metadata `json:"metadata,omitempty"`

	// DecodeErr is the pipeline error, if any. Whether it counts as a
	// failure depends on the scenario's expect clause.
	DecodeErr error `json:"-"`

	// RawSize is the length of the encoded input.
	RawSize int `json:"raw_size"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
