package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xalgo/lib/xlog"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDemo(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, runDemo(out, xlog.NewXLogger(xlog.WithXLoggerLevel(xlog.LogLevelError))))
	expected := strings.Join([]string{
		"Contents of AVL tree:",
		"(Arthur, 42)",
		"(Ben, 99)",
		"(Joe, 25)",
		"Contents of AVL tree:",
		"(Arthur, 42)",
		"(Ben, 99)",
		"(Joe, 25)",
		"Contents of AVL tree:",
		"(Ben, 99)",
		"(Joe, 25)",
		"Contents of AVL tree:",
		"(Arthur, 142)",
		"(Joe, 25)",
		"Contents of AVL tree:",
		"Size of AVL tree: 0",
		"",
	}, "\n")
	require.Equal(t, expected, out.String())
}

func TestDemoCommand(t *testing.T) {
	out, err := executeCommand(t, "demo", "--log-level=error")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Contents of AVL tree:\n(Arthur, 42)\n"))
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "xalgo dev (commit: none, go"))
}

func TestStressCommand(t *testing.T) {
	out, err := executeCommand(t, "stress",
		"--trials=2",
		"--operations=400",
		"--key-space=64",
		"--workers=2",
		"--seed=7",
		"--validate-every=50",
		"--log-level=error",
	)
	require.NoError(t, err)
	require.Contains(t, out, "seed 7\n")
	for _, policy := range []string{"avl", "rb", "heap"} {
		require.Contains(t, out, policy)
	}
	require.Contains(t, out, "2,400")
}

func TestStressCommand_InvalidConfig(t *testing.T) {
	_, err := executeCommand(t, "stress", "--policies=splay", "--log-level=error")
	require.Error(t, err)
	_, err = executeCommand(t, "stress", "--metrics=otlp", "--log-level=error")
	require.Error(t, err)
}
