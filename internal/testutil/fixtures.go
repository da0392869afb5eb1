package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/cqlgen/internal/elm"
	"github.com/roach88/cqlgen/internal/library"
	"github.com/roach88/cqlgen/internal/types"
)

// Terminology URLs used across fixtures.
const (
	SNOMEDURL          = "http://snomed.info/sct"
	LOINCURL           = "http://loinc.org"
	ConditionClinical  = "http://terminology.hl7.org/CodeSystem/condition-clinical"
	ConditionCategory  = "http://terminology.hl7.org/CodeSystem/condition-category"
	DiabetesValueSet   = "http://cts.nlm.nih.gov/fhir/ValueSet/2.16.840.1.113883.3.464.1003.103.12.1001"
	HypertensionValues = "http://cts.nlm.nih.gov/fhir/ValueSet/2.16.840.1.113883.3.464.1003.104.12.1011"
)

// Model returns the embedded default model.
func Model(t testing.TB) *types.Model {
	t.Helper()
	m, err := types.DefaultModel()
	require.NoError(t, err)
	return m
}

// Library returns an empty library with a fixed identity.
func Library() *library.Library {
	return library.New("Test", "1.0.0")
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Terminology is a small set of definitions registered in a library.
type Terminology struct {
	SNOMED          *elm.CodeSystemRef
	ConditionCat    *elm.CodeSystemRef
	ProblemListItem *elm.CodeRef
	Type2Diabetes   *elm.CodeRef
	Diabetes        *elm.ValueSetRef
}

// RegisterTerminology registers the fixture terminology in lib.
func RegisterTerminology(t testing.TB, lib *library.Library) Terminology {
	t.Helper()

	var term Terminology
	var err error
	term.SNOMED = lib.ResolveCodeSystem(SNOMEDURL, "SNOMEDCT")
	term.ConditionCat = lib.ResolveCodeSystem(ConditionCategory, "ConditionCategory")
	term.ProblemListItem, err = lib.ResolveCode("problem-list-item", "problem-list-item", "Problem List Item", term.ConditionCat)
	require.NoError(t, err)
	term.Type2Diabetes, err = lib.ResolveCode("44054006", "Type 2 diabetes", "Diabetes mellitus type 2", term.SNOMED)
	require.NoError(t, err)
	term.Diabetes = lib.ResolveValueSet(DiabetesValueSet, "Diabetes")
	return term
}
