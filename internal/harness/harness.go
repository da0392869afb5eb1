package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/cqlgen/internal/builder"
	"github.com/roach88/cqlgen/internal/elm"
	"github.com/roach88/cqlgen/internal/library"
	"github.com/roach88/cqlgen/internal/modeling"
	"github.com/roach88/cqlgen/internal/types"
)

// coded is implemented by every typed error of the module.
type coded interface {
	error
	Code() string
}

// ErrorCode returns the stable code of err, or "" when err carries none.
func ErrorCode(err error) string {
	var c coded
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// Harness runs scenarios against one model.
type Harness struct {
	model  *types.Model
	logger *slog.Logger
}

// New returns a Harness over model. A nil logger discards output.
func New(model *types.Model, logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	}
	return &Harness{model: model, logger: logger}
}

// Run executes a scenario with the scenario's model (or the embedded
// default) and returns the result.
//
// Execution flow:
// 1. Load the model
// 2. Create the library and register the scenario terminology
// 3. Resolve every request through the modeling dispatcher
// 4. Evaluate assertions against the finished library
func Run(scenario *Scenario) (*Result, error) {
	var model *types.Model
	var err error
	if scenario.Model != "" {
		model, err = types.LoadModelDir(scenario.Model)
	} else {
		model, err = types.DefaultModel()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	return New(model, nil).Run(scenario)
}

// Run executes a scenario and returns the result. Request failures and
// unmet expectations are reported in the result; the returned error is
// reserved for scenarios that cannot be set up.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	lib := library.New(scenario.Library.Name, scenario.Library.Version)
	if err := register(lib, scenario.Terminology); err != nil {
		return nil, fmt.Errorf("failed to register terminology: %w", err)
	}

	b := builder.New(h.model, lib, builder.Options{
		StrictRetrieveTyping: scenario.Strict,
		Logger:               h.logger,
	})
	d := modeling.NewDispatcher(b)

	result := NewResult()
	result.Library = lib
	for i, req := range scenario.Requests {
		outcome := h.resolve(d, lib, req)
		result.Outcomes = append(result.Outcomes, outcome.Outcome)
		for _, msg := range checkExpect(req, outcome) {
			result.AddError(fmt.Sprintf("requests[%d] %s: %s", i, outcome.Request, msg))
		}
	}

	for _, msg := range EvaluateAssertions(lib, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"requests", len(scenario.Requests),
		"pass", result.Pass,
	)
	return result, nil
}

// resolved pairs an Outcome with the error that produced it, if any.
type resolved struct {
	Outcome
	err error
}

func (h *Harness) resolve(d *modeling.Dispatcher, lib *library.Library, req Request) resolved {
	key := modeling.Key(req.Template, req.Path)
	out := resolved{Outcome: Outcome{Request: key.String(), Op: req.Op, Define: req.Define}}

	fail := func(err error) resolved {
		out.err = err
		out.Error = ErrorCode(err)
		if out.Error == "" {
			out.Error = "error"
		}
		h.logger.Debug("request failed", "request", out.Request, "error", err)
		return out
	}

	right, err := req.Right.Build(lib)
	if err != nil {
		return fail(err)
	}
	expr, err := d.ResolveModeling(key, right, req.Op)
	if err != nil {
		return fail(err)
	}
	if req.Define != "" {
		if _, err := lib.Define(req.Define, expr); err != nil {
			return fail(err)
		}
	}

	out.Kind = expr.Kind().String()
	out.Expression = elm.Format(expr)
	return out
}

func checkExpect(req Request, out resolved) []string {
	var errs []string
	if req.Expect == nil || req.Expect.Error == "" {
		if out.err != nil {
			return append(errs, fmt.Sprintf("unexpected error: %v", out.err))
		}
	}
	if req.Expect == nil {
		return nil
	}

	if want := req.Expect.Error; want != "" {
		if out.err == nil {
			return append(errs, fmt.Sprintf("expected error %s, got %s", want, out.Expression))
		}
		if out.Error != want {
			errs = append(errs, fmt.Sprintf("expected error %s, got %s (%v)", want, out.Error, out.err))
		}
		return errs
	}

	if want := req.Expect.Kind; want != "" && want != out.Kind {
		errs = append(errs, fmt.Sprintf("expected kind %s, got %s", want, out.Kind))
	}
	if want := req.Expect.Format; want != "" && want != out.Expression {
		errs = append(errs, fmt.Sprintf("expected %s\n  got %s", want, out.Expression))
	}
	return errs
}

func register(lib *library.Library, term Terminology) error {
	for _, cs := range term.CodeSystems {
		lib.ResolveCodeSystem(cs.URL, cs.Name)
	}
	for _, c := range term.Codes {
		system, ok := lib.CodeSystem(c.System)
		if !ok {
			return fmt.Errorf("code %q: code system %q is not defined", c.Name, c.System)
		}
		if _, err := lib.ResolveCode(c.ID, c.Name, c.Display, system.Ref()); err != nil {
			return err
		}
	}
	for _, vs := range term.ValueSets {
		lib.ResolveValueSet(vs.URL, vs.Name)
	}
	return nil
}
