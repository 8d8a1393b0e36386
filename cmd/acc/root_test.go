package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dshills/accepted/internal/input/mode"
)

// parse applies args to a fresh root command and returns its options.
func parse(t *testing.T, args ...string) (options, error) {
	t.Helper()
	cmd := newRootCommand("test")
	require.NoError(t, cmd.ParseFlags(args))

	return loadOptions(bindOptions(cmd))
}

func TestOptionDefaults(t *testing.T) {
	opts, err := parse(t)
	require.NoError(t, err)
	require.Equal(t, "info", opts.LogLevel)
	require.Equal(t, mode.DefaultPrefixTimeout, opts.PrefixTimeout)
	require.Zero(t, opts.MaxRuntime)
	require.NotEmpty(t, opts.ConfigPath)
	require.NotEmpty(t, opts.LogFile)
}

func TestOptionFlags(t *testing.T) {
	opts, err := parse(t,
		"--config", "/tmp/acc.toml",
		"--log-level", "debug",
		"--log-file", "/tmp/acc.log",
		"--prefix-timeout", "500ms",
		"--max-runtime", "10s",
	)
	require.NoError(t, err)
	require.Equal(t, options{
		ConfigPath:    "/tmp/acc.toml",
		LogLevel:      "debug",
		LogFile:       "/tmp/acc.log",
		PrefixTimeout: 500 * time.Millisecond,
		MaxRuntime:    10 * time.Second,
	}, opts)
}

func TestOptionEnvironment(t *testing.T) {
	t.Setenv("ACC_LOG_LEVEL", "warn")
	opts, err := parse(t)
	require.NoError(t, err)
	require.Equal(t, "warn", opts.LogLevel)

	opts, err = parse(t, "--log-level", "error")
	require.NoError(t, err)
	require.Equal(t, "error", opts.LogLevel, "flags beat the environment")
}

func TestOptionValidation(t *testing.T) {
	_, err := parse(t, "--log-level", "loud")
	require.ErrorContains(t, err, "invalid log level")

	_, err = parse(t, "--prefix-timeout", "0s")
	require.ErrorContains(t, err, "prefix timeout")

	_, err = parse(t, "--max-runtime", "-1s")
	require.ErrorContains(t, err, "max runtime")
}

func TestRootCommandArgs(t *testing.T) {
	cmd := newRootCommand("test")
	require.Error(t, cmd.Args(cmd, []string{"a.cpp", "b.cpp"}))
	require.NoError(t, cmd.Args(cmd, []string{"a.cpp"}))
	require.NoError(t, cmd.Args(cmd, nil))
}
