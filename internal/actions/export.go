package actions

import (
	"context"

	"laminar.dev/laminar/internal/export"
	"laminar.dev/laminar/internal/git"
	"laminar.dev/laminar/internal/slot"
	"laminar.dev/laminar/internal/stack"
)

// ExportAction pushes the stack's derived branches and creates or
// updates their pull requests.
func ExportAction(ctx context.Context, actx *Context, opts export.Options) error {
	s, err := stack.Discover(ctx, actx.Cfg, actx.Forge)
	if err != nil {
		return err
	}
	if s.IsEmpty() {
		actx.Splog.Info("No commits between %s and HEAD. Nothing to export.", actx.Cfg.Base)
		return nil
	}

	gitDir, err := git.GetGitDir()
	if err != nil {
		return err
	}
	cache, err := slot.LoadCache(gitDir)
	if err != nil {
		return err
	}

	lookup := stack.RemoteTrackingLookup(actx.Cfg.Remote)
	plan, err := export.BuildPlan(ctx, actx.Forge, s, actx.Cfg, cache, stack.TwoPhasePlanner{}, lookup)
	if err != nil {
		return err
	}

	if opts.DryRun {
		actx.Splog.Page(export.RenderPlan(plan, opts))
		return nil
	}

	if !plan.HasActions() {
		actx.Splog.Info("✓ Everything is up-to-date!")
		return nil
	}

	executor := &export.Executor{
		Forge: actx.Forge,
		Cfg:   actx.Cfg,
		Cache: cache,
		Caps:  git.NewCapabilities(),
		Splog: actx.Splog,
	}
	if err := executor.Execute(ctx, s, plan, opts); err != nil {
		return err
	}

	actx.Splog.Newline()
	actx.Splog.Info("✓ Exported %d commit%s.", s.Len(), pluralize(s.Len()))
	return nil
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
