package library

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cqlgen/internal/elm"
	"github.com/roach88/cqlgen/internal/types"
)

const (
	snomedURL = "http://snomed.info/sct"
	vsURL     = "http://cts.nlm.nih.gov/fhir/ValueSet/2.16.840.1.113883.3.464.1003.103.12.1001"
)

func TestResolveIdempotent(t *testing.T) {
	lib := New("Diabetes", "1.0.0")

	cs1 := lib.ResolveCodeSystem(snomedURL, "SNOMEDCT")
	cs2 := lib.ResolveCodeSystem(snomedURL, "SNOMEDCT")
	assert.Same(t, cs1, cs2)

	c1, err := lib.ResolveCode("44054006", "Type 2 diabetes", "Diabetes mellitus type 2", cs1)
	require.NoError(t, err)
	c2, err := lib.ResolveCode("44054006", "Type 2 diabetes", "Diabetes mellitus type 2", cs2)
	require.NoError(t, err)
	assert.Same(t, c1, c2)

	vs1 := lib.ResolveValueSet(vsURL, "Diabetes")
	vs2 := lib.ResolveValueSet(vsURL, "Diabetes")
	assert.Same(t, vs1, vs2)

	assert.Equal(t, 3, lib.TerminologyCount())
	assert.Empty(t, lib.Diagnostics())
}

func TestResolveDistinctNames(t *testing.T) {
	lib := New("L", "1")
	a := lib.ResolveValueSet("urn:a", "A")
	b := lib.ResolveValueSet("urn:b", "B")

	assert.NotSame(t, a, b)
	assert.Equal(t, "A", a.Name)
	require.Len(t, lib.ValueSets(), 2)
	assert.Equal(t, "B", lib.ValueSets()[1].Name)
}

func TestResolveConflictKeepsFirst(t *testing.T) {
	lib := New("L", "1")
	first := lib.ResolveValueSet("urn:first", "VS")
	second := lib.ResolveValueSet("urn:second", "VS")

	assert.Same(t, first, second)
	vs, ok := lib.ValueSet("VS")
	require.True(t, ok)
	assert.Equal(t, "urn:first", vs.URL)
	assert.Equal(t, 1, lib.TerminologyCount())

	diags := lib.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, WarnConflictingDefinition, diags[0].Code)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "urn:second")
}

func TestResolveCodeRequiresRegisteredSystem(t *testing.T) {
	lib := New("L", "1")

	_, err := lib.ResolveCode("1", "c", "", &elm.CodeSystemRef{Name: "LOINC"})
	var refErr *UnresolvedReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "LOINC", refErr.Name)
	assert.Equal(t, ErrCodeUnresolvedReference, refErr.Code())

	_, err = lib.ResolveCode("1", "c", "", nil)
	require.True(t, errors.As(err, &refErr))

	assert.Zero(t, lib.TerminologyCount())
}

func TestCodeDefinitionFields(t *testing.T) {
	lib := New("L", "1")
	loinc := lib.ResolveCodeSystem("http://loinc.org", "LOINC")
	ref, err := lib.ResolveCode("39156-5", "BMI", "Body mass index", loinc)
	require.NoError(t, err)

	d, ok := lib.Code(ref.Name)
	require.True(t, ok)
	assert.Equal(t, "39156-5", d.ID)
	assert.Equal(t, "Body mass index", d.Display)
	assert.Equal(t, "LOINC", d.CodeSystem)
	assert.Same(t, ref, d.Ref())

	cs, ok := lib.CodeSystem("LOINC")
	require.True(t, ok)
	assert.Same(t, loinc, cs.Ref())
}

func TestDefine(t *testing.T) {
	lib := New("L", "1")
	expr := &elm.Retrieve{DataType: types.Named("FHIR", "Condition")}

	d, err := lib.Define("Conditions", expr)
	require.NoError(t, err)
	assert.Same(t, expr, d.Expression)

	_, err = lib.Define("Conditions", expr)
	var dup *DuplicateDefinitionError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, ErrCodeDuplicateDefinition, dup.Code())

	got, ok := lib.Definition("Conditions")
	require.True(t, ok)
	assert.Same(t, d, got)
	assert.Len(t, lib.Definitions(), 1)
}

func TestMarkRollback(t *testing.T) {
	lib := New("L", "1")
	snomed := lib.ResolveCodeSystem(snomedURL, "SNOMEDCT")
	cp := lib.Mark()

	loinc := lib.ResolveCodeSystem("http://loinc.org", "LOINC")
	_, err := lib.ResolveCode("1", "c", "", loinc)
	require.NoError(t, err)
	lib.ResolveValueSet("urn:vs", "VS")
	_, err = lib.Define("X", elm.Boolean(true))
	require.NoError(t, err)
	lib.Record(Diagnostic{Code: WarnConceptNarrowing, Message: "narrowed"})

	lib.Rollback(cp)

	assert.Equal(t, 1, lib.TerminologyCount())
	assert.False(t, lib.HasCodeSystem("LOINC"))
	assert.False(t, lib.HasCode("c"))
	assert.False(t, lib.HasValueSet("VS"))
	assert.Empty(t, lib.Definitions())
	assert.Empty(t, lib.Diagnostics())

	// Re-registration after rollback works and the surviving ref is kept.
	assert.Same(t, snomed, lib.ResolveCodeSystem(snomedURL, "SNOMEDCT"))
	assert.NotSame(t, loinc, lib.ResolveCodeSystem("http://loinc.org", "LOINC"))
}

func TestRecordDefaultsSeverity(t *testing.T) {
	lib := New("L", "1")
	lib.Record(Diagnostic{Code: WarnPrimaryCodePathMissing, Message: "no code path"})

	diags := lib.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, "warning W201: no code path", diags[0].String())

	// Returned slice is a copy.
	diags[0].Code = "X"
	assert.Equal(t, WarnPrimaryCodePathMissing, lib.Diagnostics()[0].Code)
}

func TestLibraryID(t *testing.T) {
	a := New("Diabetes", "1.0.0").ID()
	b := New("Diabetes", "1.0.0").ID()
	c := New("Diabetes", "1.0.1").ID()

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, uuid.Version(5), a.Version())
}
