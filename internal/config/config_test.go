package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"laminar.dev/laminar/internal/config"
	"laminar.dev/laminar/testhelpers"
)

func TestLoadDefaults(t *testing.T) {
	testhelpers.NewScene(t)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "origin", cfg.Remote)
	require.Equal(t, "main", cfg.Base)
	require.Equal(t, "refs/notes/laminar", cfg.NotesRef)
	require.Equal(t, 20, cfg.LandTimeoutMinutes)
}

func TestLoadReadsGitConfig(t *testing.T) {
	scene := testhelpers.NewScene(t)

	require.NoError(t, scene.Repo.Git("config", "laminar.base", "develop"))
	require.NoError(t, scene.Repo.Git("config", "laminar.remote", "upstream"))
	require.NoError(t, scene.Repo.Git("config", "laminar.notesRef", "refs/notes/stacks"))
	require.NoError(t, scene.Repo.Git("config", "laminar.landTimeoutMinutes", "5"))

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "develop", cfg.Base)
	require.Equal(t, "upstream", cfg.Remote)
	require.Equal(t, "refs/notes/stacks", cfg.NotesRef)
	require.Equal(t, 5, cfg.LandTimeoutMinutes)
}

func TestLoadIgnoresInvalidTimeout(t *testing.T) {
	scene := testhelpers.NewScene(t)

	require.NoError(t, scene.Repo.Git("config", "laminar.landTimeoutMinutes", "not-a-number"))

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 20, cfg.LandTimeoutMinutes)
}
