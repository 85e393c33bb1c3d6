package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: nid lookup
description: sub-select form finds both variants
steps:
  - query: code-or-nid
    criteria: {national_id: T1111111A}
    expect_codes: [caseid-1]
  - query: code-or-nid
    criteria: {national_id: T2222222B}
    expect_codes: [caseid-2]
`

const failingScenario = `name: naive lookup
description: the naive path cannot see variant columns
steps:
  - query: code-or-nid-naive
    mode: lenient
    criteria: {national_id: T2222222B}
    expect_codes: [caseid-2]
`

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVerifyCommandMissingArgs(t *testing.T) {
	_, err := execute(t, "verify")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestVerifyCommandNonExistentPath(t *testing.T) {
	_, err := execute(t, "verify", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenario path not found")
}

func TestVerifyCommandEmptyDir(t *testing.T) {
	out, err := execute(t, "verify", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")

	out, err = execute(t, "--format", "json", "verify", t.TempDir())
	require.NoError(t, err)
	var result VerifyResult
	decodeData(t, out, &result)
	assert.Equal(t, 0, result.Total)
	assert.NotNil(t, result.Scenarios)
}

func TestVerifyCommandPass(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "nid.yaml", passingScenario)

	out, err := execute(t, "verify", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ nid lookup")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestVerifyCommandFail(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "nid.yaml", passingScenario)
	writeScenario(t, dir, "naive.yaml", failingScenario)

	out, err := execute(t, "--format", "json", "verify", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result VerifyResult
	resp := decodeData(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeScenario, resp.Error.Code)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)

	for _, s := range result.Scenarios {
		if s.Name == "naive lookup" {
			assert.False(t, s.Pass)
			assert.NotEmpty(t, s.Errors)
		}
	}
}

func TestVerifyCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "bad.yaml", "name: bad\nsteps:\n  - query: code-or-nid\n    typo: 1\n")

	out, err := execute(t, "verify", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ bad.yaml")
	assert.Contains(t, out, "load error")
}

func TestVerifyCommandGolden(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "nid.yaml", passingScenario)

	out, err := execute(t, "verify", path, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "(golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "nid.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), "scenario: nid lookup\n")
	assert.Contains(t, string(golden), "codes: [caseid-1]")

	_, err = execute(t, "verify", path)
	require.NoError(t, err)

	// A stale golden file fails the scenario even though its steps pass.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "nid.golden"), []byte("stale\n"), 0644))
	out, err = execute(t, "verify", path)
	require.Error(t, err)
	assert.Contains(t, out, "golden file mismatch")
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.yaml", passingScenario)
	writeScenario(t, dir, "nested/b.yml", passingScenario)
	writeScenario(t, dir, "notes.txt", "ignored")
	writeScenario(t, dir, "fixtures/cases.yaml", "cases: []")
	writeScenario(t, dir, "golden/a.golden", "")

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "nested", "b.yml"),
	}, files)
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "nid-live.yaml", passingScenario)
	writeScenario(t, dir, "nid-adopt.yaml", passingScenario)
	writeScenario(t, dir, "age.yaml", passingScenario)

	files, err := findScenarioFiles(dir, "nid-*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles(dir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestGoldenFilePath(t *testing.T) {
	tests := []struct {
		scenario string
		expected string
	}{
		{"/scenarios/nid.yaml", "/scenarios/golden/nid.golden"},
		{"/scenarios/nested/age.yml", "/scenarios/nested/golden/age.golden"},
	}
	for _, tt := range tests {
		assert.Equal(t, filepath.FromSlash(tt.expected), goldenFilePath(filepath.FromSlash(tt.scenario)))
	}
}
