package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Head is a local branch and the commit it points at.
type Head struct {
	Name   string
	Commit string
}

// Commit is a single commit with its parent hashes, as reported by rev-list.
type Commit struct {
	SHA     string
	Parents []string
}

// IsRoot reports whether the commit has no parents.
func (c Commit) IsRoot() bool { return len(c.Parents) == 0 }

// IsMerge reports whether the commit has more than one parent.
func (c Commit) IsMerge() bool { return len(c.Parents) > 1 }

// Repository wraps a Runner with typed operations against one worktree.
type Repository struct {
	runner *Runner
	root   string
}

// Open resolves the repository containing dir and returns a Repository rooted
// at its top-level worktree directory.
func Open(ctx context.Context, dir string, opts ...Option) (*Repository, error) {
	runner := NewRunner(dir, opts...)
	root, err := runner.output(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("open repository at %q: %w", dir, err)
	}
	return &Repository{runner: NewRunner(root, opts...), root: root}, nil
}

func (r *Repository) Root() string {
	return r.root
}

// Heads lists all local branches with the commits they point at.
func (r *Repository) Heads(ctx context.Context) ([]Head, error) {
	out, err := r.runner.output(ctx, "for-each-ref", "refs/heads", "--format=%(refname:short)%09%(objectname)")
	if err != nil {
		return nil, err
	}
	return parseHeads(out), nil
}

// ActiveBranch returns the checked-out branch name, or "" for a detached HEAD.
func (r *Repository) ActiveBranch(ctx context.Context) (string, error) {
	return r.runner.output(ctx, "branch", "--show-current")
}

// WorktreeBranches lists every branch checked out in any worktree, including
// the main one. Detached worktrees contribute nothing.
func (r *Repository) WorktreeBranches(ctx context.Context) ([]string, error) {
	out, err := r.runner.output(ctx, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseWorktreeBranches(out), nil
}

// MergedHeads lists the local branches whose tips are ancestors of target.
func (r *Repository) MergedHeads(ctx context.Context, target string) ([]string, error) {
	out, err := r.runner.output(ctx, "for-each-ref", "refs/heads", "--merged", target, "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// MergeBase returns the single merge base of a and b. Zero bases yield
// ErrNoMergeBase; more than one yields ErrMultipleMergeBases.
func (r *Repository) MergeBase(ctx context.Context, a, b string) (string, error) {
	out, err := r.runner.output(ctx, "merge-base", "--all", a, b)
	if err != nil {
		// merge-base exits 1 with no output when the histories are unrelated.
		if exitCode(err) == 1 && strings.TrimSpace(out) == "" {
			return "", fmt.Errorf("%w between %s and %s", ErrNoMergeBase, a, b)
		}
		return "", err
	}
	bases := splitLines(out)
	switch len(bases) {
	case 0:
		return "", fmt.Errorf("%w between %s and %s", ErrNoMergeBase, a, b)
	case 1:
		return bases[0], nil
	default:
		return "", fmt.Errorf("%w between %s and %s", ErrMultipleMergeBases, a, b)
	}
}

// RevParse resolves rev to a commit hash.
func (r *Repository) RevParse(ctx context.Context, rev string) (string, error) {
	return r.runner.output(ctx, "rev-parse", "--verify", rev+"^{commit}")
}

// HasRef reports whether ref resolves to anything.
func (r *Repository) HasRef(ctx context.Context, ref string) (bool, error) {
	_, err := r.runner.output(ctx, "rev-parse", "--verify", "--quiet", ref)
	if err != nil {
		if exitCode(err) == 1 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CommitsBetween lists the commits in lower..upper oldest first, with parents.
func (r *Repository) CommitsBetween(ctx context.Context, lower, upper string) ([]Commit, error) {
	out, err := r.runner.output(ctx, "rev-list", "--reverse", "--parents", lower+".."+upper)
	if err != nil {
		return nil, err
	}
	return parseCommits(out), nil
}

// CountCommits counts the commits in lower..upper.
func (r *Repository) CountCommits(ctx context.Context, lower, upper string) (int, error) {
	out, err := r.runner.output(ctx, "rev-list", "--count", lower+".."+upper)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("rev-list --count %s..%s: unexpected output %q", lower, upper, out)
	}
	return n, nil
}

// DiffID returns a stable patch-id for the diff between a and b. An empty
// diff returns "".
func (r *Repository) DiffID(ctx context.Context, a, b string) (string, error) {
	diff, err := r.runner.output(ctx, "diff", a, b)
	if err != nil {
		return "", err
	}
	if diff == "" {
		return "", nil
	}
	out, err := r.runner.outputWithInput(ctx, diff+"\n", "patch-id", "--stable")
	if err != nil {
		return "", err
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], nil
}

// CherryEquivalent reports whether every commit on head has a patch-equivalent
// commit on upstream, as judged by git cherry.
func (r *Repository) CherryEquivalent(ctx context.Context, upstream, head string) (bool, error) {
	out, err := r.runner.output(ctx, "cherry", upstream, head)
	if err != nil {
		return false, err
	}
	for _, line := range splitLines(out) {
		if strings.HasPrefix(line, "+") {
			return false, nil
		}
	}
	return true, nil
}

// DeleteBranch removes a local branch. force uses -D, otherwise -d so git
// still refuses branches it considers unmerged.
func (r *Repository) DeleteBranch(ctx context.Context, name string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	return r.runner.run(ctx, "branch", flag, name)
}

func parseHeads(out string) []Head {
	var heads []Head
	for _, line := range splitLines(out) {
		name, commit, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		heads = append(heads, Head{Name: name, Commit: commit})
	}
	return heads
}

func parseWorktreeBranches(out string) []string {
	var branches []string
	for _, line := range splitLines(out) {
		if ref, ok := strings.CutPrefix(line, "branch refs/heads/"); ok {
			branches = append(branches, ref)
		}
	}
	return branches
}

func parseCommits(out string) []Commit {
	var commits []Commit
	for _, line := range splitLines(out) {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		commits = append(commits, Commit{SHA: fields[0], Parents: fields[1:]})
	}
	return commits
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
