package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cqlgen/internal/builder"
)

// Scenario defines a library build: the terminology registered up front
// and a list of modeling requests resolved against it, each optionally
// defined as a named expression in the library.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Library is the identity of the library being built.
	Library LibraryIdentity `yaml:"library"`

	// Model is an optional CUE model directory, relative to the scenario
	// file. The embedded default model is used when empty.
	Model string `yaml:"model,omitempty"`

	// Strict promotes recoverable retrieve conditions to errors.
	Strict bool `yaml:"strict,omitempty"`

	// Terminology is registered in the library before any request runs.
	Terminology Terminology `yaml:"terminology,omitempty"`

	// Requests are resolved in order.
	Requests []Request `yaml:"requests"`

	// Assertions validate the finished library.
	// Supported types: definition_exists, terminology_count, diagnostic, valid
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// LibraryIdentity names and versions a library.
type LibraryIdentity struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Terminology lists definitions to register.
type Terminology struct {
	CodeSystems []CodeSystemEntry `yaml:"code_systems,omitempty"`
	Codes       []CodeEntry       `yaml:"codes,omitempty"`
	ValueSets   []ValueSetEntry   `yaml:"value_sets,omitempty"`
}

// CodeSystemEntry is a code system definition.
type CodeSystemEntry struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// CodeEntry is a code definition. System names a code system entry.
type CodeEntry struct {
	Name    string `yaml:"name"`
	ID      string `yaml:"id"`
	System  string `yaml:"system"`
	Display string `yaml:"display,omitempty"`
}

// ValueSetEntry is a value set definition.
type ValueSetEntry struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Request is one (template, path) comparison.
type Request struct {
	// Define names the library definition the result is stored under.
	// Results of requests without a name are checked but not stored.
	Define string `yaml:"define,omitempty"`

	Template string  `yaml:"template"`
	Path     string  `yaml:"path"`
	Op       string  `yaml:"op"`
	Right    Operand `yaml:"right"`

	// Expect specifies the expected outcome.
	// If nil, the request is only required to succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a request.
type Expect struct {
	// Error is the expected error code (e.g. "E402"). When set the request
	// must fail with exactly this code.
	Error string `yaml:"error,omitempty"`

	// Kind is the expected expression kind (e.g. "Exists").
	Kind string `yaml:"kind,omitempty"`

	// Format is the expected elm.Format rendering.
	Format string `yaml:"format,omitempty"`
}

// Assertion validates the finished library.
type Assertion struct {
	// Type specifies the assertion type:
	// - "definition_exists": Name is defined
	// - "terminology_count": the library holds Count terminology definitions
	// - "diagnostic": Code was recorded Count times
	// - "valid": the library passes structural validation
	Type string `yaml:"type"`

	Name  string `yaml:"name,omitempty"`
	Code  string `yaml:"code,omitempty"`
	Count int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertDefinitionExists = "definition_exists"
	AssertTerminologyCount = "terminology_count"
	AssertDiagnostic       = "diagnostic"
	AssertValid            = "valid"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative model directory is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Model != "" && !filepath.IsAbs(scenario.Model) {
		scenario.Model = filepath.Join(filepath.Dir(path), scenario.Model)
	}
	return scenario, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "request:" vs "requests:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Library.Name == "" || s.Library.Version == "" {
		return fmt.Errorf("library name and version are required")
	}
	if len(s.Requests) == 0 {
		return fmt.Errorf("requests list is required and must be non-empty")
	}

	for i, cs := range s.Terminology.CodeSystems {
		if cs.Name == "" || cs.URL == "" {
			return fmt.Errorf("terminology.code_systems[%d]: name and url are required", i)
		}
	}
	for i, c := range s.Terminology.Codes {
		if c.Name == "" || c.ID == "" || c.System == "" {
			return fmt.Errorf("terminology.codes[%d]: name, id and system are required", i)
		}
	}
	for i, vs := range s.Terminology.ValueSets {
		if vs.Name == "" || vs.URL == "" {
			return fmt.Errorf("terminology.value_sets[%d]: name and url are required", i)
		}
	}

	for i, r := range s.Requests {
		if r.Template == "" || r.Path == "" {
			return fmt.Errorf("requests[%d]: template and path are required", i)
		}
		if r.Op == "" {
			return fmt.Errorf("requests[%d]: op is required", i)
		}
		if !builder.IsOperator(r.Op) && (r.Expect == nil || r.Expect.Error == "") {
			return fmt.Errorf("requests[%d]: unknown op %q", i, r.Op)
		}
		if err := r.Right.validate(); err != nil {
			return fmt.Errorf("requests[%d].right: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertDefinitionExists:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: definition_exists requires name", index)
		}
	case AssertDiagnostic:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: diagnostic requires code", index)
		}
	case AssertTerminologyCount, AssertValid:
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
	return nil
}
