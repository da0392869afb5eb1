package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cqlgen/internal/elm"
	"github.com/roach88/cqlgen/internal/ir"
	"github.com/roach88/cqlgen/internal/testutil"
	"github.com/roach88/cqlgen/internal/types"
)

func TestOperandBuild(t *testing.T) {
	lib := testutil.Library()
	term := testutil.RegisterTerminology(t, lib)

	tests := []struct {
		name    string
		operand Operand
		want    elm.Expression
	}{
		{"value set", Operand{ValueSet: "Diabetes"}, term.Diabetes},
		{"code", Operand{Code: "Type 2 diabetes"}, term.Type2Diabetes},
		{"code system", Operand{CodeSystem: "SNOMEDCT"}, term.SNOMED},
		{"null", Operand{Null: true}, elm.Null()},
		{"string", Operand{Literal: "male"}, elm.String("male")},
		{"int", Operand{Literal: 30}, elm.Integer(30)},
		{"bool", Operand{Literal: true}, elm.Boolean(true)},
		{"typed integer", Operand{Literal: 4, Type: "Integer"}, elm.Integer(4)},
		{"decimal", Operand{Literal: "27.5", Type: "Decimal"}, elm.Decimal(ir.Decimal("27.5"))},
		{"float decimal", Operand{Literal: 27.5, Type: "Decimal"}, elm.Decimal(ir.Decimal("27.5"))},
		{"date", Operand{Literal: "2020-01-01", Type: "Date"}, &elm.Literal{Value: ir.String("2020-01-01"), Type: types.Date}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.operand.Build(lib)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOperandBuildErrors(t *testing.T) {
	lib := testutil.Library()
	testutil.RegisterTerminology(t, lib)

	tests := []struct {
		name    string
		operand Operand
		want    string
	}{
		{"empty", Operand{}, "one of valueset, code, codesystem, literal or null is required"},
		{"two set", Operand{Code: "a", ValueSet: "b"}, "only one of"},
		{"type without literal", Operand{Code: "Type 2 diabetes", Type: "Integer"}, "type is only valid with literal"},
		{"undefined value set", Operand{ValueSet: "Hypertension"}, `value set "Hypertension" is not defined`},
		{"undefined code", Operand{Code: "nope"}, `code "nope" is not defined`},
		{"undefined code system", Operand{CodeSystem: "ICD10"}, `code system "ICD10" is not defined`},
		{"float", Operand{Literal: 27.5}, "write decimals as strings"},
		{"bad decimal", Operand{Literal: "abc", Type: "Decimal"}, "abc"},
		{"mismatched type", Operand{Literal: true, Type: "Date"}, "cannot have type Date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.operand.Build(lib)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
