package classify

import (
	"context"
	"errors"
	"fmt"

	"github.com/borntyping/switchbox/internal/git"
)

// Decision is the final outcome of classifying one branch.
type Decision struct {
	Branch        git.Head
	State         State
	Kind          Kind   // set when State is StateRemovable
	RequiresForce bool   // forced delete needed to remove the branch
	Match         string // commit that resolved the plan, when removable
	Steps         int    // steps evaluated across all strategies

	// LastChecked is the resume point to persist for an unresolved squash
	// scan. Empty when there is nothing to persist.
	LastChecked string
	// Target the squash scan ran against; stored alongside LastChecked.
	Target string

	// Err is set when classification for this branch aborted.
	Err error
}

// Removable reports whether the branch can be deleted.
func (d Decision) Removable() bool {
	return d.State == StateRemovable
}

// Observer receives classification lifecycle callbacks. Implementations run
// inline with evaluation and must not block.
type Observer interface {
	StrategyStarted(kind Kind, branches, steps int)
	StepEvaluated(branch string, kind Kind, step Step)
	BranchClassified(decision Decision)
}

// Driver runs strategies in order over a set of heads. Strategies are
// ordered cheapest first and a branch stops being considered as soon as one
// strategy classifies it, so the expensive scans only ever see leftovers.
// Evaluation is deliberately sequential: every step funnels into the same
// repository, and interleaving git processes buys nothing there.
type Driver struct {
	Strategies []Strategy
	Observer   Observer
}

// Classify evaluates every head against target and returns one decision per
// head, in input order. Strategy failures abort that strategy's remaining
// work but later strategies still run; the joined failures are returned
// alongside the decisions. Cancellation stops before the next plan, never
// mid-step.
func (d *Driver) Classify(ctx context.Context, heads []git.Head, target string) ([]Decision, error) {
	decisions := make(map[string]*Decision, len(heads))
	order := make([]string, 0, len(heads))
	for _, head := range heads {
		decisions[head.Name] = &Decision{Branch: head, State: StatePending}
		order = append(order, head.Name)
	}

	var errs []error
	for _, strategy := range d.Strategies {
		remaining := undecided(heads, decisions)
		if len(remaining) == 0 {
			break
		}
		if err := d.runStrategy(ctx, strategy, remaining, target, decisions); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				errs = append(errs, err)
				break
			}
			errs = append(errs, fmt.Errorf("%s strategy: %w", strategy.Kind(), err))
		}
	}

	out := make([]Decision, 0, len(order))
	for _, name := range order {
		decision := decisions[name]
		if decision.State == StatePending || decision.State == StateEvaluating {
			decision.State = StateNotRemovable
			d.classified(decision)
		}
		out = append(out, *decision)
	}
	return out, errors.Join(errs...)
}

func (d *Driver) runStrategy(ctx context.Context, strategy Strategy, heads []git.Head, target string, decisions map[string]*Decision) error {
	plans, err := strategy.Plan(ctx, heads, target)
	if err != nil {
		return err
	}

	if d.Observer != nil {
		steps := 0
		for _, plan := range plans {
			steps += plan.Len()
		}
		d.Observer.StrategyStarted(strategy.Kind(), len(plans), steps)
	}

	for _, plan := range plans {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.runPlan(ctx, plan, target, decisions[plan.Branch().Name]); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) runPlan(ctx context.Context, plan *BranchPlan, target string, decision *Decision) error {
	if err := plan.Err(); err != nil {
		decision.State = StateNotRemovable
		decision.Err = err
		d.classified(decision)
		return nil
	}

	decision.State = StateEvaluating
	for {
		step, ok, err := plan.Next(ctx)
		if err != nil {
			decision.Err = err
			decision.State = StateNotRemovable
			d.classified(decision)
			return err
		}
		if !ok {
			break
		}
		decision.Steps++
		if d.Observer != nil {
			d.Observer.StepEvaluated(plan.Branch().Name, plan.Kind(), step)
		}
	}

	if plan.Merged() {
		decision.State = StateRemovable
		decision.Kind = plan.Kind()
		decision.RequiresForce = plan.Kind().RequiresForce()
		decision.Match = plan.Match()
		decision.LastChecked = ""
		decision.Target = ""
		d.classified(decision)
		return nil
	}

	// An unresolved squash scan records how far it got so the next run can
	// pick up where this one stopped. Resolved plans leave the stored
	// position alone: a dry run must not advance it past its own match.
	if plan.Kind() == KindSquashed && plan.LastChecked() != "" {
		decision.LastChecked = plan.LastChecked()
		decision.Target = target
	}
	return nil
}

func (d *Driver) classified(decision *Decision) {
	if d.Observer != nil {
		d.Observer.BranchClassified(*decision)
	}
}

func undecided(heads []git.Head, decisions map[string]*Decision) []git.Head {
	var remaining []git.Head
	for _, head := range heads {
		if d := decisions[head.Name]; d.State != StateRemovable && d.Err == nil {
			remaining = append(remaining, head)
		}
	}
	return remaining
}
