package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/borntyping/switchbox/internal/cache"
	"github.com/borntyping/switchbox/internal/classify"
	"github.com/borntyping/switchbox/internal/output"
)

// ErrActiveBranch refuses a run that would remove the checked-out branch.
var ErrActiveBranch = errors.New("refusing to remove the active branch")

// ExecutorGit is the backend surface applying decisions needs.
type ExecutorGit interface {
	ActiveBranch(ctx context.Context) (string, error)
	DeleteBranch(ctx context.Context, name string, force bool) error
}

// ExecutorCache persists and drops squash-scan positions. *cache.Store
// satisfies it.
type ExecutorCache interface {
	Save(ctx context.Context, entry cache.Entry) error
	Invalidate(ctx context.Context, branch string) error
}

// Outcome summarizes one Apply pass. The counts partition the decisions:
// every branch lands in exactly one.
type Outcome struct {
	Removed int
	Kept    int
	Failed  int
}

// Executor turns classification decisions into branch deletions and cache
// updates. In dry-run mode nothing is deleted and no stored state is
// dropped, but unresolved scan positions are still saved; those only ever
// sit before a potential match, so a later real run starts from them safely.
type Executor struct {
	Git    ExecutorGit
	Cache  ExecutorCache
	DryRun bool
}

// Apply walks decisions in order, emitting one record per branch. It refuses
// to do anything at all when a removable decision names the checked-out
// branch. Deletion failures are recorded and the walk continues; only
// cancellation stops it early.
func (x *Executor) Apply(ctx context.Context, decisions []classify.Decision, emit func(output.Record)) (Outcome, error) {
	active, err := x.Git.ActiveBranch(ctx)
	if err != nil {
		return Outcome{}, err
	}
	for _, decision := range decisions {
		if decision.Removable() && decision.Branch.Name == active {
			return Outcome{}, fmt.Errorf("%w: %s", ErrActiveBranch, active)
		}
	}

	var out Outcome
	for _, decision := range decisions {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		record := recordFromDecision(decision, x.DryRun)
		switch {
		case decision.Err != nil:
			out.Failed++

		case decision.Removable():
			if x.DryRun {
				out.Removed++
				break
			}
			if err := x.Git.DeleteBranch(ctx, decision.Branch.Name, decision.RequiresForce); err != nil {
				record.Error = err.Error()
				out.Failed++
				break
			}
			record.State = string(classify.StateRemoved)
			out.Removed++
			if err := x.Cache.Invalidate(ctx, decision.Branch.Name); err != nil {
				// The branch is gone either way; a leftover entry only costs
				// a rescan if the name comes back.
				record.Error = fmt.Sprintf("dropping stored scan position: %v", err)
			}

		default:
			out.Kept++
			if decision.LastChecked == "" {
				break
			}
			entry := cache.Entry{
				Branch: decision.Branch.Name,
				Target: decision.Target,
				Commit: decision.LastChecked,
			}
			if err := x.Cache.Save(ctx, entry); err != nil {
				record.Error = fmt.Sprintf("saving scan position: %v", err)
			}
		}
		emit(record)
	}
	return out, nil
}

func recordFromDecision(decision classify.Decision, dryRun bool) output.Record {
	record := output.Record{
		Branch:        decision.Branch.Name,
		State:         string(decision.State),
		Kind:          string(decision.Kind),
		Match:         decision.Match,
		Steps:         decision.Steps,
		RequiresForce: decision.RequiresForce,
		DryRun:        dryRun,
	}
	if decision.Err != nil {
		record.Error = decision.Err.Error()
	}
	return record
}
