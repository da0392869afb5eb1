package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/cqlgen/internal/builder"
	"github.com/roach88/cqlgen/internal/harness"
	"github.com/roach88/cqlgen/internal/library"
	"github.com/roach88/cqlgen/internal/modeling"
	"github.com/roach88/cqlgen/internal/types"
)

// Error code constants for failures the CLI detects itself. Resolution
// failures keep the code of the underlying error (E2xx-E4xx).
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeUsage          = "E002" // Invalid flag combination
	ErrCodeNotFound       = "E005" // Path not found
	ErrCodeModelFailed    = "E006" // Model could not be loaded
	ErrCodeScenarioFailed = "E007" // One or more scenarios failed
)

// LoadError represents an error that occurred while loading the model.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadModel loads the CUE model in dir, or the embedded default model when
// dir is empty.
func LoadModel(dir string) (*types.Model, error) {
	if dir == "" {
		model, err := types.DefaultModel()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeModelFailed, Message: err.Error()}
		}
		return model, nil
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("model directory not found: %s", dir)}
	}

	model, err := types.LoadModelDir(dir)
	if err != nil {
		var modelErr *types.ModelError
		if errors.As(err, &modelErr) {
			return nil, &LoadError{Code: ErrCodeModelFailed, Message: modelErr.Message, Pos: modelErr.Pos}
		}
		return nil, &LoadError{Code: ErrCodeModelFailed, Message: err.Error()}
	}
	return model, nil
}

// Session is the model, library and dispatcher a command works on.
type Session struct {
	Model      *types.Model
	Library    *library.Library
	Dispatcher *modeling.Dispatcher
}

// NewSession loads the model named by opts and creates an empty library
// with a dispatcher over the default recipe table.
func NewSession(opts *RootOptions, logger *slog.Logger) (*Session, error) {
	model, err := LoadModel(opts.ModelDir)
	if err != nil {
		return nil, err
	}

	lib := library.New(opts.LibraryName, opts.LibraryVersion)
	b := builder.New(model, lib, builder.Options{
		StrictRetrieveTyping: opts.Strict,
		Logger:               logger,
	})
	return &Session{Model: model, Library: lib, Dispatcher: modeling.NewDispatcher(b)}, nil
}

// errorCode returns the stable code carried by err, falling back to
// ErrCodeGeneric.
func errorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	if code := harness.ErrorCode(err); code != "" {
		return code
	}
	return ErrCodeGeneric
}
