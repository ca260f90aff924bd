// Package config loads laminar configuration from git config, with
// defaults derived from the repository's remote state.
package config

import (
	"strconv"

	"laminar.dev/laminar/internal/git"
)

// Defaults applied when git config has no laminar.* entries.
const (
	DefaultRemote             = "origin"
	DefaultBase               = "main"
	DefaultNotesRef           = "refs/notes/laminar"
	DefaultLandTimeoutMinutes = 20
)

// Config holds the settings every command reads.
type Config struct {
	// Base is the branch the stack grows from
	Base string
	// Remote is the remote the stack is exported to
	Remote string
	// NotesRef is where commit metadata lives
	NotesRef string
	// LandTimeoutMinutes bounds the merge wait in `laminar land`
	LandTimeoutMinutes int
}

// Load reads configuration from git config. The base branch falls back to
// the remote's default branch (refs/remotes/<remote>/HEAD), then to "main".
func Load() (*Config, error) {
	cfg := &Config{
		Remote:             getString("laminar.remote", DefaultRemote),
		NotesRef:           getString("laminar.notesRef", DefaultNotesRef),
		LandTimeoutMinutes: getInt("laminar.landTimeoutMinutes", DefaultLandTimeoutMinutes),
	}

	cfg.Base = getString("laminar.base", "")
	if cfg.Base == "" {
		if branch, ok := git.GetRemoteDefaultBranch(cfg.Remote); ok {
			cfg.Base = branch
		} else {
			cfg.Base = DefaultBase
		}
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	value, err := git.RunGitCommand("config", "--get", key)
	if err != nil || value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) int {
	value, err := git.RunGitCommand("config", "--get", key)
	if err != nil || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
