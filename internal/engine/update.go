package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// FetchGit is the backend surface remote updates need.
type FetchGit interface {
	Fetch(ctx context.Context, remote string, prune bool) error
}

// FetchRemotes fetches every named remote, at most jobs at a time. A failing
// remote does not stop the others; failures are joined into the returned
// error in remote order.
func FetchRemotes(ctx context.Context, g FetchGit, remotes []string, jobs int, prune bool) error {
	if jobs <= 0 {
		return fmt.Errorf("jobs must be >= 1, got %d", jobs)
	}

	var group errgroup.Group
	group.SetLimit(jobs)

	errs := make([]error, len(remotes))
	for i, remote := range remotes {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			if err := g.Fetch(ctx, remote, prune); err != nil {
				errs[i] = fmt.Errorf("updating %s: %w", remote, err)
			}
			// Failures are collected, not returned, so one broken remote
			// does not cancel the rest.
			return nil
		})
	}
	_ = group.Wait()

	return errors.Join(errs...)
}
