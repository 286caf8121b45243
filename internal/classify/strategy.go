package classify

import (
	"context"
	"errors"
	"fmt"

	"github.com/borntyping/switchbox/internal/git"
)

// Git is the backend surface classification needs. *git.Repository satisfies
// it; tests substitute a fake.
type Git interface {
	RevParse(ctx context.Context, rev string) (string, error)
	MergedHeads(ctx context.Context, target string) ([]string, error)
	CherryEquivalent(ctx context.Context, upstream, head string) (bool, error)
	MergeBase(ctx context.Context, a, b string) (string, error)
	CommitsBetween(ctx context.Context, lower, upper string) ([]git.Commit, error)
	CountCommits(ctx context.Context, lower, upper string) (int, error)
	DiffID(ctx context.Context, a, b string) (string, error)
}

// ResumeFunc returns the commit an earlier squash scan of branch against
// target stopped at. ok is false when there is nothing usable to resume from.
type ResumeFunc func(ctx context.Context, branch, target string) (commit string, ok bool)

// Strategy builds one plan per head. Strategies are fixed: every
// classification a branch can receive maps to exactly one of the three kinds,
// and the deletion rules depend on that mapping staying closed.
type Strategy interface {
	Kind() Kind

	// Plan builds plans for the given heads against target. Merge-base
	// failures are recorded on the affected plan so other branches proceed;
	// any other backend failure aborts the build.
	Plan(ctx context.Context, heads []git.Head, target string) ([]*BranchPlan, error)
}

// MergedStrategy finds branches whose tips are ancestors of the target. One
// ancestor-set lookup covers every head, so each plan has a single free step.
type MergedStrategy struct {
	Git Git
}

func (s MergedStrategy) Kind() Kind { return KindMerged }

func (s MergedStrategy) Plan(ctx context.Context, heads []git.Head, target string) ([]*BranchPlan, error) {
	names, err := s.Git.MergedHeads(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("listing heads merged into %s: %w", target, err)
	}
	merged := make(map[string]bool, len(names))
	for _, name := range names {
		merged[name] = true
	}

	plans := make([]*BranchPlan, 0, len(heads))
	for _, head := range heads {
		plans = append(plans, &BranchPlan{
			branch: head,
			kind:   KindMerged,
			probes: []probe{{
				commit: head.Commit,
				eval: func(context.Context) (bool, error) {
					return merged[head.Name], nil
				},
			}},
		})
	}
	return plans, nil
}

// RebasedStrategy finds branches where git cherry reports an equivalent
// upstream commit for every branch commit. Each plan is a single step that
// runs one cherry comparison.
type RebasedStrategy struct {
	Git Git
}

func (s RebasedStrategy) Kind() Kind { return KindRebased }

func (s RebasedStrategy) Plan(ctx context.Context, heads []git.Head, target string) ([]*BranchPlan, error) {
	plans := make([]*BranchPlan, 0, len(heads))
	for _, head := range heads {
		plans = append(plans, &BranchPlan{
			branch: head,
			kind:   KindRebased,
			probes: []probe{{
				commit: head.Commit,
				eval: func(ctx context.Context) (bool, error) {
					return s.Git.CherryEquivalent(ctx, target, head.Name)
				},
			}},
		})
	}
	return plans, nil
}

// SquashedStrategy finds branches merged into the target with a squash
// commit: a commit between the merge base and the target whose diff against
// its parent reproduces the branch's whole diff against the merge base.
// Every target commit since the merge base is a candidate, so these plans
// carry one step per candidate and evaluate them lazily.
type SquashedStrategy struct {
	Git Git

	// Resume, when set, lets plans skip candidates an earlier scan already
	// cleared. The skipped candidates still appear as steps so totals stay
	// comparable between runs.
	Resume ResumeFunc
}

func (s SquashedStrategy) Kind() Kind { return KindSquashed }

func (s SquashedStrategy) Plan(ctx context.Context, heads []git.Head, target string) ([]*BranchPlan, error) {
	targetCommit, err := s.Git.RevParse(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", target, err)
	}

	plans := make([]*BranchPlan, 0, len(heads))
	for _, head := range heads {
		plan, err := s.plan(ctx, head, target, targetCommit)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (s SquashedStrategy) plan(ctx context.Context, head git.Head, target, targetCommit string) (*BranchPlan, error) {
	// A branch pointing at the target tip has no diff to look for.
	if head.Commit == targetCommit {
		return zeroStepPlan(head, KindSquashed), nil
	}

	mergeBase, err := s.Git.MergeBase(ctx, target, head.Name)
	if err != nil {
		if errors.Is(err, git.ErrNoMergeBase) || errors.Is(err, git.ErrMultipleMergeBases) {
			return failedPlan(head, KindSquashed, err), nil
		}
		return nil, err
	}

	// A single-commit branch that was squashed is indistinguishable from one
	// that was rebased, and the rebase check is far cheaper.
	count, err := s.Git.CountCommits(ctx, mergeBase, head.Name)
	if err != nil {
		return nil, err
	}
	if count <= 1 {
		return zeroStepPlan(head, KindSquashed), nil
	}

	branchDiff, err := s.Git.DiffID(ctx, mergeBase, head.Name)
	if err != nil {
		return nil, err
	}
	if branchDiff == "" {
		return zeroStepPlan(head, KindSquashed), nil
	}

	candidates, err := s.Git.CommitsBetween(ctx, mergeBase, target)
	if err != nil {
		return nil, err
	}

	// Resume strictly after the commit the previous scan stopped at. A cached
	// commit that is no longer a candidate means the target was rewritten, so
	// the scan starts over.
	split := 0
	if s.Resume != nil {
		if resumeAt, ok := s.Resume(ctx, head.Name, target); ok {
			for i, c := range candidates {
				if c.SHA == resumeAt {
					split = i + 1
					break
				}
			}
		}
	}

	probes := make([]probe, 0, len(candidates))
	for i, candidate := range candidates {
		if i < split || candidate.IsRoot() || candidate.IsMerge() {
			probes = append(probes, probe{commit: candidate.SHA})
			continue
		}
		probes = append(probes, probe{
			commit: candidate.SHA,
			eval: func(ctx context.Context) (bool, error) {
				diff, err := s.Git.DiffID(ctx, candidate.Parents[0], candidate.SHA)
				if err != nil {
					return false, err
				}
				return diff == branchDiff, nil
			},
		})
	}

	return &BranchPlan{branch: head, kind: KindSquashed, probes: probes}, nil
}
