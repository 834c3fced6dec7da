package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "ration", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"requirements", "formulate", "targets", "batch", "ingredients"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
	assert.Equal(t, "ration.yaml", configFlag.DefValue)

	for _, name := range []string{"log-level", "format", "metrics-textfile"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("metrics_textfile"))
}

// run executes the CLI from an empty working directory so that the default
// config lookup falls back to built-in data.
func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Chdir(t.TempDir())
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), append([]string{"--log-level", "error"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestFormulateCommand(t *testing.T) {
	code, stdout, stderr := run(t, "formulate", "--animal", "cattle", "--weight", "500", "--activity", "low")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "--- Ration cattle ---")
	assert.Contains(t, stdout, "Wheat Bran | 75.00 | $45.00 | $3,375.00")
	assert.Contains(t, stdout, "Total cost: $3,375.00")
}

func TestFormulateCommandJSON(t *testing.T) {
	code, stdout, stderr := run(t, "--format", "json", "formulate", "-a", "cattle", "-w", "500",
		"--activity", "low", "--price", "Corn=5")
	require.Equal(t, ExitSuccess, code, stderr)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 1)
	assert.Equal(t, true, results[0]["success"])
	assert.Equal(t, 1650.0, results[0]["total_cost"])
	assert.Equal(t, 1650.0, results[0]["objective"])
}

func TestFormulateCommandFailures(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		reason string
	}{
		{"unknown animal", []string{"formulate", "--animal", "dog", "--weight", "20"}, "invalid_input"},
		{"missing weight", []string{"formulate", "--animal", "goat"}, "invalid_input"},
		{"negative price", []string{"formulate", "--animal", "cattle", "--weight", "500", "--price", "Corn=-5"}, "invalid_input"},
		{"unparseable price", []string{"formulate", "--animal", "cattle", "--weight", "500", "--price", "Corn=cheap"}, "invalid_input"},
		{"insufficient supply", []string{"formulate", "--animal", "cattle", "--weight", "500", "--activity", "low",
			"--max", "Corn=50", "--max", "Soybean Meal=50", "--max", "Wheat Bran=50"}, "infeasible"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := run(t, append([]string{"--format", "json"}, tt.args...)...)
			assert.Equal(t, ExitFailure, code)
			assert.Contains(t, stderr, "formulations failed")

			var results []map[string]any
			require.NoError(t, json.Unmarshal([]byte(stdout), &results))
			require.Len(t, results, 1)
			assert.Equal(t, false, results[0]["success"])
			assert.Equal(t, tt.reason, results[0]["reason"])
			assert.NotContains(t, results[0], "quantities")
		})
	}
}

func TestTargetsCommand(t *testing.T) {
	code, stdout, stderr := run(t, "--format", "csv", "targets", "--protein", "100000", "--fiber", "100000")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "targets,true,Wheat Bran,5555.56,45.00,")

	code, _, _ = run(t, "targets", "--protein", "10")
	assert.Equal(t, ExitFailure, code)
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "requests.yaml")
	content := `
requests:
  - name: herd
    animal: {animal: cattle, weight: 500, activity: low}
  - name: custom
    targets:
      protein: 770
      fiber: 3300
      min: {Corn: 10, Soybean Meal: 5}
  - name: stray
    animal: {animal: dog, weight: 12}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	code, stdout, _ := run(t, "--format", "json", "batch", "--file", path)
	assert.Equal(t, ExitFailure, code)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 3)
	assert.Equal(t, "herd", results[0]["name"])
	assert.Equal(t, true, results[0]["success"])
	assert.Equal(t, true, results[1]["success"])
	quantities := results[1]["quantities"].(map[string]any)
	assert.Equal(t, 10.0, quantities["Corn"])
	assert.Equal(t, "invalid_input", results[2]["reason"])
}

func TestBatchCommandErrors(t *testing.T) {
	code, _, stderr := run(t, "batch", "--file", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "failed to read batch file")

	code, _, _ = run(t, "batch")
	assert.Equal(t, ExitCommandError, code)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("requests: []\n"), 0o600))
	code, _, stderr = run(t, "batch", "--file", empty)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "has no requests")
}

func TestIngredientsCommand(t *testing.T) {
	code, stdout, stderr := run(t, "ingredients")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Soybean Meal | 48.00 | 6.00 | $180.00")
}

func TestRequirementsCommand(t *testing.T) {
	code, stdout, stderr := run(t, "--format", "csv", "requirements", "--activity", "low")
	require.Equal(t, ExitSuccess, code, stderr)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "cattle,500.00,low,0.1,770.00,3300.00", lines[1])

	code, _, stderr = run(t, "requirements", "--animal", "dog")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, `invalid animal type "dog"`)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ration.yaml")
	content := `
output:
  format: csv
ingredients:
  - name: Oats
    protein: 11
    fiber: 10.5
    cost: 60
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	code, stdout, stderr := run(t, "--config", path, "ingredients")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "name,protein,fiber,cost\nOats,11.00,10.50,60.00\n", stdout)

	code, _, stderr = run(t, "--config", filepath.Join(dir, "missing.yaml"), "ingredients")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "failed to load configuration")
}

func TestInvalidGlobalFlags(t *testing.T) {
	code, _, stderr := run(t, "--format", "xml", "ingredients")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "invalid output format")

	var stdout, errOut bytes.Buffer
	t.Chdir(t.TempDir())
	code = Execute(context.Background(), []string{"--log-level", "loud", "ingredients"}, &stdout, &errOut)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, errOut.String(), "invalid log level")
}

func TestMetricsTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ration.prom")
	code, _, stderr := run(t, "--metrics-textfile", path, "formulate", "--animal", "dog", "--weight", "3")
	assert.Equal(t, ExitFailure, code, stderr)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `ration_formulations_total{outcome="invalid_input",path="animal"} 1`)
}
