package harness

import (
	"github.com/roach88/cqlgen/internal/library"
)

// Outcome records what one request produced.
type Outcome struct {
	Request    string `json:"request"` // template/path
	Op         string `json:"op"`
	Define     string `json:"define,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Expression string `json:"expression,omitempty"` // elm.Format rendering
	Error      string `json:"error,omitempty"`      // error code
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Outcomes holds one entry per request, in order.
	Outcomes []Outcome `json:"outcomes"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Library is the library the scenario built.
	Library *library.Library `json:"-"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Outcomes: []Outcome{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
