package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: "Patient gender"
library:
  name: Test
  version: 1.0.0
requests:
  - define: Is Male
    template: Patient
    path: gender
    op: "=="
    right:
      literal: male
`

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minimal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario), 0644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "minimal", scenario.Name)
	assert.Equal(t, LibraryIdentity{Name: "Test", Version: "1.0.0"}, scenario.Library)
	require.Len(t, scenario.Requests, 1)
	assert.Equal(t, "Is Male", scenario.Requests[0].Define)
	assert.Equal(t, "male", scenario.Requests[0].Right.Literal)
	assert.False(t, scenario.Strict)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_RelativeModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario+"model: models/fhir\n"), 0644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "models/fhir"), scenario.Model)
}

func TestLoadScenario_Fixtures(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			_, err := LoadScenario(file)
			require.NoError(t, err)
		})
	}
}

func TestParseScenario_UnknownField(t *testing.T) {
	// "request:" instead of "requests:"
	data := `
name: typo
description: "typo"
library: {name: Test, version: 1.0.0}
request:
  - template: Patient
    path: gender
    op: "=="
    right: {literal: male}
`
	_, err := ParseScenario([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
	assert.Contains(t, err.Error(), "request")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: `
description: "x"
library: {name: Test, version: 1.0.0}
requests: [{template: Patient, path: gender, op: "==", right: {literal: male}}]
`,
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: `
name: x
library: {name: Test, version: 1.0.0}
requests: [{template: Patient, path: gender, op: "==", right: {literal: male}}]
`,
			want: "description is required",
		},
		{
			name: "missing library version",
			yaml: `
name: x
description: "x"
library: {name: Test}
requests: [{template: Patient, path: gender, op: "==", right: {literal: male}}]
`,
			want: "library name and version are required",
		},
		{
			name: "no requests",
			yaml: `
name: x
description: "x"
library: {name: Test, version: 1.0.0}
requests: []
`,
			want: "requests list is required",
		},
		{
			name: "missing path",
			yaml: `
name: x
description: "x"
library: {name: Test, version: 1.0.0}
requests: [{template: Patient, op: "==", right: {literal: male}}]
`,
			want: "requests[0]: template and path are required",
		},
		{
			name: "unknown op without expected error",
			yaml: `
name: x
description: "x"
library: {name: Test, version: 1.0.0}
requests: [{template: Patient, path: gender, op: "=~", right: {literal: male}}]
`,
			want: `requests[0]: unknown op "=~"`,
		},
		{
			name: "two operands",
			yaml: `
name: x
description: "x"
library: {name: Test, version: 1.0.0}
requests: [{template: Patient, path: gender, op: "==", right: {literal: male, code: x}}]
`,
			want: "requests[0].right: only one of",
		},
		{
			name: "code without system",
			yaml: `
name: x
description: "x"
library: {name: Test, version: 1.0.0}
terminology:
  codes: [{name: c, id: "1"}]
requests: [{template: Patient, path: gender, op: "==", right: {literal: male}}]
`,
			want: "terminology.codes[0]",
		},
		{
			name: "unknown assertion",
			yaml: `
name: x
description: "x"
library: {name: Test, version: 1.0.0}
requests: [{template: Patient, path: gender, op: "==", right: {literal: male}}]
assertions: [{type: trace_contains}]
`,
			want: `assertions[0]: unknown type "trace_contains"`,
		},
		{
			name: "definition_exists without name",
			yaml: `
name: x
description: "x"
library: {name: Test, version: 1.0.0}
requests: [{template: Patient, path: gender, op: "==", right: {literal: male}}]
assertions: [{type: definition_exists}]
`,
			want: "definition_exists requires name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseScenario_UnknownOpWithExpectedError(t *testing.T) {
	data := `
name: x
description: "x"
library: {name: Test, version: 1.0.0}
requests:
  - template: Patient
    path: gender
    op: "=~"
    right: {literal: male}
    expect: {error: E313}
`
	scenario, err := ParseScenario([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, "E313", scenario.Requests[0].Expect.Error)
}
