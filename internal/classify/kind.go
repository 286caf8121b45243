// Package classify decides which local branches are already contained in a
// target branch and can be removed. Finding squashed branches takes multiple
// units of work per branch, which is why plans are broken up into steps that
// can be evaluated, counted and resumed independently.
package classify

// Kind identifies how a branch's changes ended up in the target.
type Kind string

const (
	// KindMerged means the branch tip is an ancestor of the target.
	KindMerged Kind = "merged"
	// KindRebased means every commit on the branch has a patch-equivalent
	// commit on the target.
	KindRebased Kind = "rebased"
	// KindSquashed means a single commit on the target reproduces the
	// branch's whole diff against their merge base.
	KindSquashed Kind = "squashed"
)

// RequiresForce reports whether deleting a branch with this classification
// needs a forced delete. Only plain merges leave the branch tip reachable
// from the target, so everything else looks unmerged to git.
func (k Kind) RequiresForce() bool {
	return k != KindMerged
}

// State tracks a branch through a classification run.
type State string

const (
	StatePending      State = "pending"
	StateEvaluating   State = "evaluating"
	StateRemovable    State = "removable"
	StateNotRemovable State = "not-removable"
	StateRemoved      State = "removed"
)
