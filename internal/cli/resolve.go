package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cqlgen/internal/elm"
	"github.com/roach88/cqlgen/internal/harness"
	"github.com/roach88/cqlgen/internal/library"
	"github.com/roach88/cqlgen/internal/modeling"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Op          string
	Code        string // system-url|code[|display]
	ValueSet    string // value set url
	Name        string // name for the code or value set definition
	Literal     string
	Type        string // System type of Literal
	Null        bool
	Define      string // expression definition name
	EmitLibrary bool   // print the canonical library instead of the expression
}

// ResolveResult is the JSON payload of the resolve command.
type ResolveResult struct {
	Request     string          `json:"request"`
	Op          string          `json:"op"`
	Kind        string          `json:"kind"`
	ResultType  string          `json:"result_type"`
	Expression  string          `json:"expression"`
	Diagnostics []string        `json:"diagnostics,omitempty"`
	Fingerprint string          `json:"fingerprint"`
	Library     json.RawMessage `json:"library,omitempty"`
}

// knownSystems names well-known code systems by url.
var knownSystems = map[string]string{
	"http://snomed.info/sct":                      "SNOMEDCT",
	"http://loinc.org":                            "LOINC",
	"http://hl7.org/fhir/sid/icd-10-cm":           "ICD10CM",
	"http://www.nlm.nih.gov/research/umls/rxnorm": "RxNorm",
	"http://hl7.org/fhir/sid/cvx":                 "CVX",
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <template> <path>",
		Short: "Resolve one template path comparison",
		Long: `Resolve a (template, path) comparison into an expression.

The right operand is one of --code, --valueset, --literal or --null.
Terminology operands are registered in the library under --name, or under
a name derived from the code display or value set url.

Examples:
  cqlgen resolve Patient gender --op == --literal male
  cqlgen resolve Condition code --op in --valueset http://cts.nlm.nih.gov/fhir/ValueSet/2.16.840.1.113883.3.464.1003.103.12.1001
  cqlgen resolve Condition active/code --op == --code "http://snomed.info/sct|44054006|Diabetes mellitus type 2"
  cqlgen resolve Observation bmi/value --op ">=" --literal 27.5 --type Decimal --emit-library`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Op, "op", "==", "comparison operator (==, !=, <, <=, >, >=, in, ~, !~)")
	cmd.Flags().StringVar(&opts.Code, "code", "", "code operand as system-url|code[|display]")
	cmd.Flags().StringVar(&opts.ValueSet, "valueset", "", "value set operand url")
	cmd.Flags().StringVar(&opts.Name, "name", "", "definition name for the code or value set")
	cmd.Flags().StringVar(&opts.Literal, "literal", "", "literal operand")
	cmd.Flags().StringVar(&opts.Type, "type", "", "literal type (String, Integer, Decimal, Boolean, Date, DateTime, Time)")
	cmd.Flags().BoolVar(&opts.Null, "null", false, "null operand")
	cmd.Flags().StringVar(&opts.Define, "define", "Expression", "expression definition name")
	cmd.Flags().BoolVar(&opts.EmitLibrary, "emit-library", false, "output the canonical library JSON")

	return cmd
}

func runResolve(opts *ResolveOptions, template, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	session, err := NewSession(opts.RootOptions, opts.NewLogger(cmd.ErrOrStderr()))
	if err != nil {
		return formatter.Fail(errorCode(err), err, ExitCommandError)
	}

	operand, err := opts.operand(session.Library)
	if err != nil {
		return formatter.Fail(ErrCodeUsage, err, ExitCommandError)
	}
	right, err := operand.Build(session.Library)
	if err != nil {
		return formatter.Fail(ErrCodeUsage, err, ExitCommandError)
	}

	key := modeling.Key(template, path)
	expr, err := session.Dispatcher.ResolveModeling(key, right, opts.Op)
	if err != nil {
		return formatter.Fail(errorCode(err), err, ExitFailure)
	}
	if _, err := session.Library.Define(opts.Define, expr); err != nil {
		return formatter.Fail(errorCode(err), err, ExitFailure)
	}
	formatter.VerboseLog("Resolved %s with %d terminology definition(s)", key, session.Library.TerminologyCount())

	fingerprint, err := elm.Fingerprint(expr)
	if err != nil {
		return formatter.Fail(ErrCodeGeneric, err, ExitFailure)
	}
	result := ResolveResult{
		Request:     key.String(),
		Op:          opts.Op,
		Kind:        expr.Kind().String(),
		ResultType:  expr.ResultType().String(),
		Expression:  elm.Format(expr),
		Fingerprint: fingerprint,
	}
	for _, d := range session.Library.Diagnostics() {
		result.Diagnostics = append(result.Diagnostics, d.String())
	}

	var libraryJSON []byte
	if opts.EmitLibrary {
		libraryJSON, err = session.Library.MarshalCanonical()
		if err != nil {
			return formatter.Fail(ErrCodeGeneric, err, ExitFailure)
		}
		result.Library = libraryJSON
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if opts.EmitLibrary {
		fmt.Fprintln(w, string(libraryJSON))
	} else {
		fmt.Fprintln(w, result.Expression)
	}
	formatter.Warn(result.Diagnostics...)
	return nil
}

// operand registers the terminology named by the flags and returns the
// scenario operand that refers to it.
func (o *ResolveOptions) operand(lib *library.Library) (harness.Operand, error) {
	set := 0
	for _, ok := range []bool{o.Code != "", o.ValueSet != "", o.Literal != "", o.Null} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return harness.Operand{}, fmt.Errorf("exactly one of --code, --valueset, --literal or --null is required")
	}
	if o.Type != "" && o.Literal == "" {
		return harness.Operand{}, fmt.Errorf("--type is only valid with --literal")
	}

	switch {
	case o.Code != "":
		parts := strings.Split(o.Code, "|")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
			return harness.Operand{}, fmt.Errorf("invalid --code %q: want system-url|code[|display]", o.Code)
		}
		url, id := parts[0], parts[1]
		display := ""
		if len(parts) == 3 {
			display = parts[2]
		}
		name := o.Name
		if name == "" {
			name = display
		}
		if name == "" {
			name = id
		}
		system := lib.ResolveCodeSystem(url, systemName(url))
		if _, err := lib.ResolveCode(id, name, display, system); err != nil {
			return harness.Operand{}, err
		}
		return harness.Operand{Code: name}, nil

	case o.ValueSet != "":
		name := o.Name
		if name == "" {
			name = lastSegment(o.ValueSet)
		}
		lib.ResolveValueSet(o.ValueSet, name)
		return harness.Operand{ValueSet: name}, nil

	case o.Null:
		return harness.Operand{Null: true}, nil
	}

	value, err := parseLiteral(o.Literal, o.Type)
	if err != nil {
		return harness.Operand{}, err
	}
	return harness.Operand{Literal: value, Type: o.Type}, nil
}

// parseLiteral converts a flag value to the scalar a scenario file would
// hold. Untyped values are integers, the words true and false, or strings.
func parseLiteral(s, typeName string) (any, error) {
	switch typeName {
	case "":
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		switch s {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return s, nil
	case "Integer":
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid Integer literal %q", s)
		}
		return i, nil
	case "Boolean":
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid Boolean literal %q", s)
		}
		return b, nil
	}
	return s, nil
}

func systemName(url string) string {
	if name, ok := knownSystems[url]; ok {
		return name
	}
	return lastSegment(url)
}

func lastSegment(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 && i < len(trimmed)-1 {
		return trimmed[i+1:]
	}
	return trimmed
}

