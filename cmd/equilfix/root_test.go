package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

const abProblem = "../../problemio/testdata/ab.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(viper.New())
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	out, err := run(t, "check", "-f", abProblem, "--scope", "components")
	require.NoError(t, err)
	require.Contains(t, out, "compliant(components): false")

	_, err = run(t, "check", "-f", abProblem, "--scope", "most")
	require.Error(t, err)
}

func TestCorrectCommand(t *testing.T) {
	dir := t.TempDir()
	outFile := filepath.Join(dir, "fixed.yaml")
	metrics := filepath.Join(dir, "equil.prom")

	out, err := run(t, "correct", "-f", abProblem, "-o", outFile, "--solver", "pivot-lu", "--metrics-out", metrics)
	require.NoError(t, err)
	require.Contains(t, out, "status: 1 (compliant)")
	require.Contains(t, out, "stage: degenerate-rows")

	b, err := os.ReadFile(outFile)
	require.NoError(t, err)
	require.Contains(t, string(b), "moles: 3")

	m, err := os.ReadFile(metrics)
	require.NoError(t, err)
	require.Contains(t, string(m), `equil_corrections_total{status="compliant"} 1`)

	out, err = run(t, "check", "-f", outFile)
	require.NoError(t, err)
	require.Contains(t, out, "compliant(all): true")
}

func TestRearrangeCommandToStdout(t *testing.T) {
	out, err := run(t, "rearrange", "-f", "../../problemio/testdata/carbon.yaml", "-o", "-")
	require.NoError(t, err)
	require.Contains(t, out, "rejected: [Ar]")
	require.Contains(t, out, "components: 2")
}

func TestUnknownSolver(t *testing.T) {
	_, err := run(t, "correct", "-f", abProblem, "--solver", "qr")
	require.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "equil.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("solver: qr\n"), 0o600))

	// The config file is read, so its bad solver name surfaces.
	_, err := run(t, "--config", cfg, "correct", "-f", abProblem)
	require.Error(t, err)
}
