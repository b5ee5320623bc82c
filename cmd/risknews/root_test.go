package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*cobra.Command, *options) {
	t.Helper()

	opts := &options{}
	run, _, err := buildRootCmd(opts).Find([]string{"run"})
	require.NoError(t, err)
	require.NoError(t, run.ParseFlags(args))
	return run, opts
}

func TestFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  budget: 50\n  workers: 2\nlogging:\n  level: warn\n"), 0o600))
	t.Setenv("RISKNEWS_BUDGET", "")
	t.Setenv("RISKNEWS_WINDOW", "")

	cmd, opts := parse(t, "--config", path, "--window", "7d", "--budget", "20", "--out", "x.csv", "-v")
	cfg, logger, err := opts.load(cmd)
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.Equal(t, "7d", cfg.Feed.Window)
	assert.Equal(t, 20, cfg.Pipeline.Budget)
	assert.Equal(t, 2, cfg.Pipeline.Workers)
	assert.Equal(t, "x.csv", cfg.Output.CSVPath)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestUnsetFlagsKeepConfig(t *testing.T) {
	t.Setenv("RISKNEWS_BUDGET", "")
	t.Setenv("RISKNEWS_WINDOW", "")
	t.Setenv("RISKNEWS_CONFIG", "")
	t.Setenv("RISKNEWS_LOG_LEVEL", "")

	cmd, opts := parse(t)
	cfg, _, err := opts.load(cmd)
	require.NoError(t, err)
	assert.Equal(t, "24h", cfg.Feed.Window)
	assert.Equal(t, 0, cfg.Pipeline.Budget)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestInvalidFlags(t *testing.T) {
	t.Setenv("RISKNEWS_CONFIG", "")

	cmd, opts := parse(t, "--window", "soon")
	_, _, err := opts.load(cmd)
	assert.Error(t, err)

	cmd, opts = parse(t, "--workers", "0")
	_, _, err = opts.load(cmd)
	assert.Error(t, err)
}

func TestRunRejectsArgs(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"run", "extra"})
	assert.Error(t, root.Execute())
}
