package classify

import (
	"context"

	"github.com/borntyping/switchbox/internal/git"
)

// Step is one evaluation against a single commit. A step with Merged set
// resolves the whole plan.
type Step struct {
	Index  int
	Commit string
	Merged bool
}

// probe pairs a commit with the work needed to check it. A nil eval records
// the step without doing any work; plans use that for commits that cannot
// match (root and merge commits) and for commits a previous run already
// cleared.
type probe struct {
	commit string
	eval   func(ctx context.Context) (bool, error)
}

// BranchPlan is an ordered series of steps that decide whether one branch is
// contained in the target. The step count is known before any step runs, and
// evaluation stops at the first step that reports a match.
type BranchPlan struct {
	branch git.Head
	kind   Kind

	buildErr error
	probes   []probe

	pos         int
	merged      bool
	match       string
	lastChecked string
}

func (p *BranchPlan) Branch() git.Head { return p.branch }

func (p *BranchPlan) Kind() Kind { return p.kind }

// Len is the total number of steps, available without evaluating any of them.
func (p *BranchPlan) Len() int { return len(p.probes) }

// Err returns the error that prevented this plan from being built, if any.
// A plan with a build error has no steps and never resolves.
func (p *BranchPlan) Err() error { return p.buildErr }

// Next evaluates the next step. It returns false once the plan is exhausted,
// either because a step matched or because every step has run. A step
// evaluation failure leaves the plan unexhausted and is returned as-is.
func (p *BranchPlan) Next(ctx context.Context) (Step, bool, error) {
	if p.buildErr != nil || p.merged || p.pos >= len(p.probes) {
		return Step{}, false, nil
	}

	pr := p.probes[p.pos]
	step := Step{Index: p.pos, Commit: pr.commit}
	if pr.eval != nil {
		matched, err := pr.eval(ctx)
		if err != nil {
			return Step{}, false, err
		}
		step.Merged = matched
	}

	p.pos++
	p.lastChecked = pr.commit
	if step.Merged {
		p.merged = true
		p.match = pr.commit
	}
	return step, true, nil
}

// Merged reports whether any evaluated step matched.
func (p *BranchPlan) Merged() bool { return p.merged }

// Match returns the commit that resolved the plan, when Merged is true.
func (p *BranchPlan) Match() string { return p.match }

// LastChecked returns the last commit a step covered, whether or not that
// step did any work. Unresolved squash scans persist this as the point to
// resume from.
func (p *BranchPlan) LastChecked() string { return p.lastChecked }

// zeroStepPlan resolves false without any work.
func zeroStepPlan(branch git.Head, kind Kind) *BranchPlan {
	return &BranchPlan{branch: branch, kind: kind}
}

// failedPlan records a branch whose classification aborted before evaluation.
func failedPlan(branch git.Head, kind Kind, err error) *BranchPlan {
	return &BranchPlan{branch: branch, kind: kind, buildErr: err}
}
