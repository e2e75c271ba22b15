package testrun

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticRunnerChecksTestFiles(t *testing.T) {
	report, err := StaticRunner{}.RunTests(context.Background(), map[string]string{
		"src/app.py":            "x = 1",
		"tests/test_app.py":     "assert True",
		"tests/test_missing.py": "   ",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Log, "PASS tests/test_app.py")
	assert.Contains(t, report.Log, "FAIL tests/test_missing.py")
}

func TestStaticRunnerNoTests(t *testing.T) {
	report, err := StaticRunner{}.RunTests(context.Background(), map[string]string{"src/app.py": "x = 1"})
	require.NoError(t, err)
	assert.Zero(t, report.Passed)
	assert.Zero(t, report.Failed)
	assert.Contains(t, report.Log, "no test files")
}
