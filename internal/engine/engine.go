// Package engine ties the git backend, classification, the scan cache and
// the output sinks together into the operations the CLI exposes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/borntyping/switchbox/internal/cache"
	"github.com/borntyping/switchbox/internal/classify"
	"github.com/borntyping/switchbox/internal/config"
	"github.com/borntyping/switchbox/internal/git"
	"github.com/borntyping/switchbox/internal/output"
)

func exitCodeForRun(fatal, partial bool) int {
	// Exit code contract:
	// 0 = clean run
	// 2 = partial failure (some branches could not be classified or removed)
	// 3 = fatal error (run did not complete)
	if fatal {
		return 3
	}
	if partial {
		return 2
	}
	return 0
}

// Git is the full backend surface the engine drives. *git.Repository
// satisfies it; tests substitute a fake.
type Git interface {
	classify.Git
	DetectGit
	ExecutorGit
	FetchGit

	WorktreeBranches(ctx context.Context) ([]string, error)
	PullFastForward(ctx context.Context, remote, branch string) error
	ResetBranch(ctx context.Context, branch, ref string) error
	Switch(ctx context.Context, branch string) error
	Rebase(ctx context.Context, upstream string) error
	PushForceWithLease(ctx context.Context, remote, local, remoteBranch, expect string) error
	SparseSet(ctx context.Context, exclude []string) error
	SparseReapply(ctx context.Context) error
	ConfigRemoveSection(ctx context.Context, section string) error
	ConfigEntries(ctx context.Context, pattern string) ([]git.ConfigEntry, error)
}

// Engine runs the tool's operations against one repository. Out receives
// human-facing results and Err progress and errors; they default to stdout
// and stderr.
type Engine struct {
	Git      Git
	Cache    *cache.Store
	Resolver *Resolver
	Config   *config.Config

	Out io.Writer
	Err io.Writer
}

func New(g Git, cfg *config.Config, lookup BranchLookup) *Engine {
	return &Engine{
		Git:   g,
		Cache: cache.New(g),
		Resolver: &Resolver{
			Git:              g,
			BranchCandidates: cfg.Detect.BranchNames,
			RemoteCandidates: cfg.Detect.RemoteNames,
			Lookup:           lookup,
		},
		Config: cfg,
		Out:    os.Stdout,
		Err:    os.Stderr,
	}
}

// Tidy classifies branches against the target and removes the ones whose
// changes the target already carries.
func (e *Engine) Tidy(ctx context.Context) int {
	return e.run(ctx, false)
}

// Finish brings the default branch up to date, switches to it, then tidies.
// Switching first makes the branch being finished a removal candidate.
func (e *Engine) Finish(ctx context.Context) int {
	return e.run(ctx, true)
}

func (e *Engine) run(ctx context.Context, finish bool) int {
	cfg := e.Config
	partial := false

	if cfg.Update.Enabled {
		if err := e.refreshRemotes(ctx); err != nil {
			// Stale remote refs skew classification toward keeping branches,
			// never toward removing one wrongly.
			fmt.Fprintf(e.Err, "Error updating remotes: %v\n", err)
			partial = true
		}
	}

	if finish {
		if !e.forwardDefaultBranch(ctx) {
			return exitCodeForRun(true, false)
		}
		if !e.switchToDefaultBranch(ctx) {
			return exitCodeForRun(true, false)
		}
	}

	target, err := e.Resolver.Target(ctx, cfg.Tidy.Target)
	if err != nil {
		fmt.Fprintf(e.Err, "Error resolving target: %v\n", err)
		return exitCodeForRun(true, false)
	}

	candidates, ok := e.candidateHeads(ctx, target)
	if !ok {
		return exitCodeForRun(true, false)
	}

	outMgr, err := e.setupOutputManager()
	if err != nil {
		fmt.Fprintf(e.Err, "Error creating output sinks: %v\n", err)
		return exitCodeForRun(true, false)
	}
	defer outMgr.Close()

	_ = outMgr.Write(output.RunStarted(target, len(candidates)))

	driver := &classify.Driver{
		Strategies: e.strategies(),
		Observer:   &managerObserver{manager: outMgr},
	}
	decisions, classifyErr := driver.Classify(ctx, candidates, target)

	fatal := false
	if classifyErr != nil {
		fmt.Fprintf(e.Err, "Error during classification: %v\n", classifyErr)
		if isCanceled(classifyErr) {
			fatal = true
		} else {
			partial = true
		}
	}

	var summary Outcome
	if !fatal {
		executor := &Executor{Git: e.Git, Cache: e.Cache, DryRun: cfg.Tidy.DryRun}
		summary, err = executor.Apply(ctx, decisions, func(r output.Record) {
			_ = outMgr.Write(r)
		})
		if err != nil {
			fmt.Fprintf(e.Err, "Error: %v\n", err)
			fatal = true
		}
	}

	code := exitCodeForRun(fatal, partial || summary.Failed > 0)
	ev := output.RunFinished(summary.Removed, summary.Kept, summary.Failed, code)
	ev.DryRun = cfg.Tidy.DryRun
	_ = outMgr.Write(ev)
	return code
}

// candidateHeads lists the branches a run should classify: all heads minus
// the target, the default branch, anything checked out in a worktree, and
// anything protected.
func (e *Engine) candidateHeads(ctx context.Context, target string) ([]git.Head, bool) {
	heads, err := e.Git.Heads(ctx)
	if err != nil {
		fmt.Fprintf(e.Err, "Error listing branches: %v\n", err)
		return nil, false
	}
	worktrees, err := e.Git.WorktreeBranches(ctx)
	if err != nil {
		fmt.Fprintf(e.Err, "Error listing worktrees: %v\n", err)
		return nil, false
	}

	exclude := append([]string{target}, worktrees...)
	// Detection only fails here when a target override is in place, and then
	// the override is the base to compare against.
	if name, err := e.Resolver.DefaultBranch(ctx); err == nil {
		exclude = append(exclude, name)
	}

	return FilterHeads(heads, exclude, e.Config.Tidy.Protect), true
}

func (e *Engine) strategies() []classify.Strategy {
	var strategies []classify.Strategy
	if e.Config.Tidy.Merged {
		strategies = append(strategies, classify.MergedStrategy{Git: e.Git})
	}
	if e.Config.Tidy.Rebased {
		strategies = append(strategies, classify.RebasedStrategy{Git: e.Git})
	}
	if e.Config.Tidy.Squashed {
		strategies = append(strategies, classify.SquashedStrategy{Git: e.Git, Resume: e.Cache.Resume})
	}
	return strategies
}

func (e *Engine) setupOutputManager() (*output.Manager, error) {
	cfg := e.Config
	outMgr := output.NewManager()

	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(e.Out, cfg.Output.ConsoleFormat, cfg.Output.ConsoleFilterState)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	for _, emit := range cfg.Output.Emit {
		es, err := output.NewEmitSink(e.Out, emit)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(es); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	if cfg.Output.Report != "" {
		rs, err := output.NewReportSink(cfg.Output.Report)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(rs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

// managerObserver forwards classification lifecycle points to the output
// sinks. Individual steps stay internal; verbose command logging covers them.
type managerObserver struct {
	manager *output.Manager
}

func (o *managerObserver) StrategyStarted(kind classify.Kind, branches, steps int) {
	_ = o.manager.Write(output.StrategyStarted(string(kind), branches, steps))
}

func (o *managerObserver) StepEvaluated(branch string, kind classify.Kind, step classify.Step) {}

func (o *managerObserver) BranchClassified(decision classify.Decision) {}

// forwardDefaultBranch moves the local default branch to its remote
// counterpart, skipping quietly when there is no usable remote ref.
func (e *Engine) forwardDefaultBranch(ctx context.Context) bool {
	branch, err := e.Resolver.DefaultBranch(ctx)
	if err != nil {
		fmt.Fprintf(e.Err, "Error resolving default branch: %v\n", err)
		return false
	}
	remote, err := e.Resolver.DefaultRemote(ctx)
	if errors.Is(err, ErrNoDefaultRemote) {
		return true
	}
	if err != nil {
		fmt.Fprintf(e.Err, "Error resolving default remote: %v\n", err)
		return false
	}

	ref := remote + "/" + branch
	ok, err := e.Git.HasRef(ctx, ref)
	if err != nil {
		fmt.Fprintf(e.Err, "Error: %v\n", err)
		return false
	}
	if !ok {
		return true
	}

	active, err := e.Git.ActiveBranch(ctx)
	if err != nil {
		fmt.Fprintf(e.Err, "Error: %v\n", err)
		return false
	}
	if active == branch {
		err = e.Git.PullFastForward(ctx, remote, branch)
	} else {
		err = e.Git.ResetBranch(ctx, branch, ref)
	}
	if err != nil {
		fmt.Fprintf(e.Err, "Error updating %s: %v\n", branch, err)
		return false
	}
	if !e.Config.Output.NoConsole {
		output.Done(e.Out, "Updated branch %s to match %s.", output.BranchName(branch), output.TargetName(ref))
	}
	return true
}

func (e *Engine) switchToDefaultBranch(ctx context.Context) bool {
	branch, err := e.Resolver.DefaultBranch(ctx)
	if err != nil {
		fmt.Fprintf(e.Err, "Error resolving default branch: %v\n", err)
		return false
	}
	active, err := e.Git.ActiveBranch(ctx)
	if err != nil {
		fmt.Fprintf(e.Err, "Error: %v\n", err)
		return false
	}
	if active == branch {
		if !e.Config.Output.NoConsole {
			output.Done(e.Out, "Already on the %s branch.", output.BranchName(branch))
		}
		return true
	}
	if err := e.Git.Switch(ctx, branch); err != nil {
		fmt.Fprintf(e.Err, "Error switching to %s: %v\n", branch, err)
		return false
	}
	if !e.Config.Output.NoConsole {
		output.Done(e.Out, "Switched to the %s branch.", output.BranchName(branch))
	}
	return true
}

func (e *Engine) refreshRemotes(ctx context.Context) error {
	remotes, err := e.Git.Remotes(ctx)
	if err != nil {
		return fmt.Errorf("listing remotes: %w", err)
	}
	if len(remotes) == 0 {
		return nil
	}
	if !e.Config.Output.NoConsole {
		fmt.Fprintln(e.Err, "Updating remotes...")
	}
	return FetchRemotes(ctx, e.Git, remotes, e.Config.Update.Jobs, e.Config.Update.Prune)
}

// Update fetches every remote, pruning remote-tracking refs whose branches
// are gone when pruning is enabled.
func (e *Engine) Update(ctx context.Context) int {
	remotes, err := e.Git.Remotes(ctx)
	if err != nil {
		fmt.Fprintf(e.Err, "Error listing remotes: %v\n", err)
		return exitCodeForRun(true, false)
	}
	if len(remotes) == 0 {
		output.Done(e.Out, "No remotes to update.")
		return exitCodeForRun(false, false)
	}
	if !e.Config.Output.NoConsole {
		fmt.Fprintln(e.Err, "Updating remotes...")
	}
	if err := FetchRemotes(ctx, e.Git, remotes, e.Config.Update.Jobs, e.Config.Update.Prune); err != nil {
		fmt.Fprintf(e.Err, "Error: %v\n", err)
		return exitCodeForRun(false, true)
	}
	output.Done(e.Out, "Updated remotes.")
	return exitCodeForRun(false, false)
}

// Rebase rebases the active branch onto the default branch's remote ref and,
// when push is set, force pushes it back with a lease on the ref that was
// just fetched.
func (e *Engine) Rebase(ctx context.Context, push bool) int {
	if e.Config.Update.Enabled {
		// The push lease below is only as good as the remote refs it was
		// taken against, so a failed update stops the whole operation.
		if err := e.refreshRemotes(ctx); err != nil {
			fmt.Fprintf(e.Err, "Error updating remotes: %v\n", err)
			return exitCodeForRun(true, false)
		}
	}

	branch, err := e.Resolver.DefaultBranch(ctx)
	if err != nil {
		fmt.Fprintf(e.Err, "Error resolving default branch: %v\n", err)
		return exitCodeForRun(true, false)
	}
	remote, err := e.Resolver.DefaultRemote(ctx)
	if err != nil {
		fmt.Fprintf(e.Err, "Error resolving default remote: %v\n", err)
		return exitCodeForRun(true, false)
	}
	upstream := remote + "/" + branch
	ok, err := e.Git.HasRef(ctx, upstream)
	if err != nil {
		fmt.Fprintf(e.Err, "Error: %v\n", err)
		return exitCodeForRun(true, false)
	}
	if !ok {
		fmt.Fprintf(e.Err, "Error: %s does not resolve to a commit\n", upstream)
		return exitCodeForRun(true, false)
	}

	active, err := e.Git.ActiveBranch(ctx)
	if err != nil {
		fmt.Fprintf(e.Err, "Error: %v\n", err)
		return exitCodeForRun(true, false)
	}
	if active == "" {
		fmt.Fprintln(e.Err, "Error: no branch is checked out")
		return exitCodeForRun(true, false)
	}

	before, err := e.Git.RevParse(ctx, active)
	if err != nil {
		fmt.Fprintf(e.Err, "Error: %v\n", err)
		return exitCodeForRun(true, false)
	}

	if err := e.Git.Rebase(ctx, upstream); err != nil {
		fmt.Fprintf(e.Err, "Error rebasing onto %s: %v\n", upstream, err)
		return exitCodeForRun(true, false)
	}
	output.Done(e.Out, "Rebased %s onto %s.", output.BranchName(active), output.TargetName(upstream))

	if !push {
		return exitCodeForRun(false, false)
	}
	if err := e.Git.PushForceWithLease(ctx, remote, active, active, before); err != nil {
		fmt.Fprintf(e.Err, "Error pushing %s: %v\n", active, err)
		return exitCodeForRun(false, true)
	}
	output.Done(e.Out, "Pushed %s to %s.", output.BranchName(active), output.TargetName(remote))
	return exitCodeForRun(false, false)
}

// Sparse configures sparse checkout to hide the excluded patterns from the
// working tree.
func (e *Engine) Sparse(ctx context.Context) int {
	exclude := e.Config.Sparse.Exclude
	if err := e.Git.SparseSet(ctx, exclude); err != nil {
		fmt.Fprintf(e.Err, "Error configuring sparse checkout: %v\n", err)
		return exitCodeForRun(true, false)
	}
	if err := e.Git.SparseReapply(ctx); err != nil {
		fmt.Fprintf(e.Err, "Error reapplying sparse checkout: %v\n", err)
		return exitCodeForRun(true, false)
	}
	if len(exclude) == 0 {
		output.Done(e.Out, "Nothing excluded; the working tree is complete.")
	} else {
		output.Done(e.Out, "Hiding %s from the working tree.", strings.Join(exclude, ", "))
	}
	return exitCodeForRun(false, false)
}

// Settings prints every stored option and scan position for the repository.
func (e *Engine) Settings(ctx context.Context) int {
	entries, err := e.Git.ConfigEntries(ctx, `^switchbox\.`)
	if err != nil {
		fmt.Fprintf(e.Err, "Error reading settings: %v\n", err)
		return exitCodeForRun(true, false)
	}
	if len(entries) == 0 {
		fmt.Fprintln(e.Out, "No settings stored for this repository.")
		return exitCodeForRun(false, false)
	}
	for _, entry := range entries {
		fmt.Fprintf(e.Out, "%s=%s\n", entry.Key, entry.Value)
	}
	return exitCodeForRun(false, false)
}

// InitSettings drops the stored default branch and remote and detects them
// again from scratch.
func (e *Engine) InitSettings(ctx context.Context) int {
	branch, remote, err := e.Resolver.Redetect(ctx)
	if err != nil {
		fmt.Fprintf(e.Err, "Error: %v\n", err)
		return exitCodeForRun(true, false)
	}
	output.Done(e.Out, "Using %s as the default branch.", output.BranchName(branch))
	if remote == "" {
		fmt.Fprintln(e.Out, "No default remote found.")
	} else {
		output.Done(e.Out, "Using %s as the default remote.", output.TargetName(remote))
	}
	return exitCodeForRun(false, false)
}

// SetDefaultBranch stores an explicit default branch choice. The branch does
// not have to exist yet.
func (e *Engine) SetDefaultBranch(ctx context.Context, name string) int {
	if err := e.Git.ConfigSet(ctx, SettingDefaultBranch, name); err != nil {
		fmt.Fprintf(e.Err, "Error: %v\n", err)
		return exitCodeForRun(true, false)
	}
	output.Done(e.Out, "Using %s as the default branch.", output.BranchName(name))
	return exitCodeForRun(false, false)
}

// SetDefaultRemote stores an explicit default remote choice.
func (e *Engine) SetDefaultRemote(ctx context.Context, name string) int {
	if err := e.Git.ConfigSet(ctx, SettingDefaultRemote, name); err != nil {
		fmt.Fprintf(e.Err, "Error: %v\n", err)
		return exitCodeForRun(true, false)
	}
	output.Done(e.Out, "Using %s as the default remote.", output.TargetName(name))
	return exitCodeForRun(false, false)
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
