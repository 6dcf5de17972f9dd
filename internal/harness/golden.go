package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// RunWithGolden runs one scenario and compares its uncolored report against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) *Report {
	t.Helper()

	report, err := Run(context.Background(), []*Scenario{scenario})
	require.NoError(t, err)

	AssertGolden(t, scenario.Name, report)
	return report
}

// AssertGolden compares an already computed report against a golden file.
func AssertGolden(t *testing.T, name string, report *Report) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(report.String()))
}
