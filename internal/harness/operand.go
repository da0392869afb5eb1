package harness

import (
	"fmt"

	"github.com/roach88/cqlgen/internal/elm"
	"github.com/roach88/cqlgen/internal/ir"
	"github.com/roach88/cqlgen/internal/library"
	"github.com/roach88/cqlgen/internal/types"
)

// Operand is the right-hand side of a request. Exactly one of ValueSet,
// Code, CodeSystem, Literal or Null is set; terminology operands name
// definitions registered in the library.
type Operand struct {
	ValueSet   string `yaml:"valueset,omitempty"`
	Code       string `yaml:"code,omitempty"`
	CodeSystem string `yaml:"codesystem,omitempty"`
	Literal    any    `yaml:"literal,omitempty"`
	Null       bool   `yaml:"null,omitempty"`

	// Type is the System type of Literal. When empty it is inferred from
	// the YAML scalar: strings, integers and booleans. Decimals need a
	// Type; Date, DateTime and Time literals are strings with a Type.
	Type string `yaml:"type,omitempty"`
}

func (o Operand) validate() error {
	set := 0
	for _, ok := range []bool{o.ValueSet != "", o.Code != "", o.CodeSystem != "", o.Literal != nil, o.Null} {
		if ok {
			set++
		}
	}
	switch {
	case set == 0:
		return fmt.Errorf("one of valueset, code, codesystem, literal or null is required")
	case set > 1:
		return fmt.Errorf("only one of valueset, code, codesystem, literal or null may be set")
	case o.Type != "" && o.Literal == nil:
		return fmt.Errorf("type is only valid with literal")
	}
	return nil
}

// Build resolves the operand against lib.
func (o Operand) Build(lib *library.Library) (elm.Expression, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	switch {
	case o.ValueSet != "":
		def, ok := lib.ValueSet(o.ValueSet)
		if !ok {
			return nil, fmt.Errorf("value set %q is not defined", o.ValueSet)
		}
		return def.Ref(), nil
	case o.Code != "":
		def, ok := lib.Code(o.Code)
		if !ok {
			return nil, fmt.Errorf("code %q is not defined", o.Code)
		}
		return def.Ref(), nil
	case o.CodeSystem != "":
		def, ok := lib.CodeSystem(o.CodeSystem)
		if !ok {
			return nil, fmt.Errorf("code system %q is not defined", o.CodeSystem)
		}
		return def.Ref(), nil
	case o.Null:
		return elm.Null(), nil
	}
	return literal(o.Literal, o.Type)
}

// literal converts a YAML scalar to a typed literal.
func literal(v any, typeName string) (elm.Expression, error) {
	if typeName == "" {
		switch val := v.(type) {
		case string:
			return elm.String(val), nil
		case int:
			return elm.Integer(int64(val)), nil
		case int64:
			return elm.Integer(val), nil
		case bool:
			return elm.Boolean(val), nil
		case float64:
			return nil, fmt.Errorf("literal %v: write decimals as strings with type Decimal", val)
		default:
			return nil, fmt.Errorf("unsupported literal %T", v)
		}
	}

	s, ok := v.(string)
	if !ok {
		value, err := ir.FromGo(v)
		if err != nil {
			return nil, err
		}
		return typedLiteral(value, typeName)
	}
	switch typeName {
	case "Decimal":
		d, err := ir.ParseDecimal(s)
		if err != nil {
			return nil, err
		}
		return elm.Decimal(d), nil
	case "String":
		return elm.String(s), nil
	}
	return typedLiteral(ir.String(s), typeName)
}

var temporalTypes = map[string]types.NamedType{
	"Date":     types.Date,
	"DateTime": types.DateTime,
	"Time":     types.Time,
}

func typedLiteral(value ir.Value, typeName string) (elm.Expression, error) {
	switch val := value.(type) {
	case ir.Integer:
		if typeName == "Integer" {
			return elm.Integer(int64(val)), nil
		}
	case ir.Decimal:
		if typeName == "Decimal" {
			return elm.Decimal(val), nil
		}
	case ir.Boolean:
		if typeName == "Boolean" {
			return elm.Boolean(bool(val)), nil
		}
	case ir.String:
		if t, ok := temporalTypes[typeName]; ok {
			return &elm.Literal{Value: val, Type: t}, nil
		}
	}
	return nil, fmt.Errorf("literal %v cannot have type %s", value, typeName)
}
