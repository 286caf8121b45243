package git

import (
	"context"
)

// Remotes lists the configured remote names.
func (r *Repository) Remotes(ctx context.Context) ([]string, error) {
	out, err := r.runner.output(ctx, "remote")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// RemoteURL returns the fetch URL for a remote.
func (r *Repository) RemoteURL(ctx context.Context, name string) (string, error) {
	return r.runner.output(ctx, "remote", "get-url", name)
}

// Fetch updates a remote, optionally pruning deleted refs.
func (r *Repository) Fetch(ctx context.Context, remote string, prune bool) error {
	args := []string{"fetch", remote}
	if prune {
		args = append(args, "--prune")
	}
	return r.runner.run(ctx, args...)
}

// PullFastForward fast-forwards the checked-out branch from its remote
// counterpart. Diverged histories fail rather than merge.
func (r *Repository) PullFastForward(ctx context.Context, remote, branch string) error {
	return r.runner.run(ctx, "pull", "--ff-only", remote, branch)
}

// ResetBranch points a branch that is not checked out at ref.
func (r *Repository) ResetBranch(ctx context.Context, branch, ref string) error {
	return r.runner.run(ctx, "branch", "--force", branch, ref)
}

// Switch checks out a branch.
func (r *Repository) Switch(ctx context.Context, branch string) error {
	return r.runner.run(ctx, "switch", branch)
}

// Rebase rebases the checked-out branch onto upstream, moving any other
// local branches that point into the rebased range along with it.
func (r *Repository) Rebase(ctx context.Context, upstream string) error {
	return r.runner.run(ctx, "rebase", "--update-refs", upstream)
}

// PushForceWithLease pushes local to remoteBranch on remote, refusing to
// overwrite anything but the expected commit.
func (r *Repository) PushForceWithLease(ctx context.Context, remote, local, remoteBranch, expect string) error {
	return r.runner.run(ctx,
		"push", remote,
		local+":"+remoteBranch,
		"--force-with-lease="+remoteBranch+":"+expect,
	)
}

// SparseSet configures a non-cone sparse checkout that includes everything
// except the given paths.
func (r *Repository) SparseSet(ctx context.Context, exclude []string) error {
	args := []string{"sparse-checkout", "set", "--no-cone", "/*"}
	for _, path := range exclude {
		args = append(args, "!"+path)
	}
	return r.runner.run(ctx, args...)
}

// SparseReapply re-applies the configured sparse checkout to the worktree.
func (r *Repository) SparseReapply(ctx context.Context) error {
	return r.runner.run(ctx, "sparse-checkout", "reapply")
}
