package cli

import (
	"context"

	"laminar.dev/laminar/internal/actions"
	"laminar.dev/laminar/internal/config"
	"laminar.dev/laminar/internal/git"
	"laminar.dev/laminar/internal/github"
	"laminar.dev/laminar/internal/output"
)

// newActionContext opens the repository, loads configuration, and builds
// the forge client every command needs.
func newActionContext(ctx context.Context, verbose bool) (*actions.Context, error) {
	output.InitColorProfile()
	splog := output.NewSplog(verbose)

	if err := git.InitDefaultRepo(); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// Rewrites must copy notes or slots die with the old SHAs.
	if err := git.EnsureNotesRewriteConfig(cfg.NotesRef); err != nil {
		splog.Warn("Failed to configure notes rewriting: %v", err)
	}

	forge, err := github.NewClient(ctx, cfg.Remote)
	if err != nil {
		return nil, err
	}

	return &actions.Context{
		Forge: forge,
		Cfg:   cfg,
		Splog: splog,
	}, nil
}
