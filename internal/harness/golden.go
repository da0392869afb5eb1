package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/cqlgen/internal/ir"
)

// Snapshot captures a scenario execution for golden comparison.
type Snapshot struct {
	ScenarioName string
	Library      ir.Object
	Outcomes     []Outcome
	Diagnostics  []string
}

// NewSnapshot builds the snapshot of a finished run. The library entry is
// the encoded identity and terminology; definitions are covered by the
// outcomes.
func NewSnapshot(name string, result *Result) Snapshot {
	s := Snapshot{ScenarioName: name, Outcomes: result.Outcomes}
	if lib := result.Library; lib != nil {
		enc := lib.Encode()
		delete(enc, "statements")
		enc["id"] = ir.String(lib.ID().String())
		s.Library = enc
		for _, d := range lib.Diagnostics() {
			s.Diagnostics = append(s.Diagnostics, d.String())
		}
	}
	return s
}

// Encode converts the snapshot to an ir.Object for canonical serialization.
func (s Snapshot) Encode() ir.Object {
	outcomes := make(ir.Array, len(s.Outcomes))
	for i, o := range s.Outcomes {
		obj := ir.Object{
			"request": ir.String(o.Request),
			"op":      ir.String(o.Op),
		}
		for key, val := range map[string]string{
			"define":     o.Define,
			"kind":       o.Kind,
			"expression": o.Expression,
			"error":      o.Error,
		} {
			if val != "" {
				obj[key] = ir.String(val)
			}
		}
		outcomes[i] = obj
	}

	diagnostics := make(ir.Array, len(s.Diagnostics))
	for i, d := range s.Diagnostics {
		diagnostics[i] = ir.String(d)
	}

	result := ir.Object{
		"scenario_name": ir.String(s.ScenarioName),
		"outcomes":      outcomes,
		"diagnostics":   diagnostics,
	}
	if s.Library != nil {
		result["library"] = s.Library
	}
	return result
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := ir.MarshalCanonical(NewSnapshot(scenarioName, result).Encode())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
