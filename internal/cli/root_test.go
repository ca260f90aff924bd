package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	root := NewRootCmd()
	require.Equal(t, "laminar", root.Use)

	names := map[string]bool{}
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"export", "view", "land", "landed", "slot"} {
		require.True(t, names[want], "missing command %s", want)
	}
}

func TestExportCmdFlags(t *testing.T) {
	verbose := false
	cmd := newExportCmd(&verbose)

	for _, flag := range []string{"draft", "push-only", "pr-only", "open", "dry-run"} {
		require.NotNil(t, cmd.Flags().Lookup(flag), "missing flag --%s", flag)
	}
}
