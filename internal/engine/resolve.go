package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/borntyping/switchbox/internal/git"
)

// Repository-local settings recording which branch and remote the tool works
// against. Detection writes them on first success so later runs skip it.
const (
	SettingDefaultBranch = "switchbox.default-branch"
	SettingDefaultRemote = "switchbox.default-remote"
)

var (
	// ErrNoDefaultBranch means detection found nothing to treat as the
	// default branch.
	ErrNoDefaultBranch = errors.New("no default branch found")
	// ErrNoDefaultRemote means detection found nothing to treat as the
	// default remote.
	ErrNoDefaultRemote = errors.New("no default remote found")
)

// DetectGit is the backend surface default branch and remote detection needs.
type DetectGit interface {
	ConfigGet(ctx context.Context, key string) (string, bool, error)
	ConfigSet(ctx context.Context, key, value string) error
	ConfigUnset(ctx context.Context, key string) error
	Heads(ctx context.Context) ([]git.Head, error)
	Remotes(ctx context.Context) ([]string, error)
	RemoteURL(ctx context.Context, name string) (string, error)
	HasRef(ctx context.Context, ref string) (bool, error)
}

// BranchLookup resolves a default branch from a hosting service given a
// remote URL. ok is false when the URL is not one the lookup understands.
type BranchLookup func(ctx context.Context, remoteURL string) (branch string, ok bool, err error)

// Resolver decides which branch and remote a repository revolves around.
// Successful detection is persisted in the repository config, so each
// question is answered at most once per repository.
type Resolver struct {
	Git              DetectGit
	BranchCandidates []string
	RemoteCandidates []string

	// Lookup, when set, is asked for the default branch when no local head
	// matches a candidate name.
	Lookup BranchLookup
}

// DefaultBranch returns the repository's default branch, detecting and
// persisting it on first use.
func (r *Resolver) DefaultBranch(ctx context.Context) (string, error) {
	name, ok, err := r.Git.ConfigGet(ctx, SettingDefaultBranch)
	if err != nil {
		return "", err
	}
	if ok {
		return name, nil
	}

	name, err = r.detectBranch(ctx)
	if err != nil {
		return "", err
	}
	if err := r.Git.ConfigSet(ctx, SettingDefaultBranch, name); err != nil {
		return "", err
	}
	return name, nil
}

func (r *Resolver) detectBranch(ctx context.Context) (string, error) {
	heads, err := r.Git.Heads(ctx)
	if err != nil {
		return "", err
	}
	names := make(map[string]bool, len(heads))
	for _, head := range heads {
		names[head.Name] = true
	}
	for _, candidate := range r.BranchCandidates {
		if names[candidate] {
			return candidate, nil
		}
	}

	if r.Lookup != nil {
		name, ok, err := r.lookupBranch(ctx)
		if err != nil {
			return "", err
		}
		if ok {
			return name, nil
		}
	}

	return "", fmt.Errorf("%w (tried: %s); set one with 'switchbox config default-branch <name>'",
		ErrNoDefaultBranch, strings.Join(r.BranchCandidates, ", "))
}

func (r *Resolver) lookupBranch(ctx context.Context) (string, bool, error) {
	remote, err := r.DefaultRemote(ctx)
	if err != nil {
		// Without a usable remote there is nothing to ask.
		if errors.Is(err, ErrNoDefaultRemote) {
			return "", false, nil
		}
		return "", false, err
	}
	url, err := r.Git.RemoteURL(ctx, remote)
	if err != nil {
		return "", false, err
	}
	return r.Lookup(ctx, url)
}

// DefaultRemote returns the repository's default remote, detecting and
// persisting it on first use.
func (r *Resolver) DefaultRemote(ctx context.Context) (string, error) {
	name, ok, err := r.Git.ConfigGet(ctx, SettingDefaultRemote)
	if err != nil {
		return "", err
	}
	if ok {
		return name, nil
	}

	remotes, err := r.Git.Remotes(ctx)
	if err != nil {
		return "", err
	}
	present := make(map[string]bool, len(remotes))
	for _, remote := range remotes {
		present[remote] = true
	}
	for _, candidate := range r.RemoteCandidates {
		if !present[candidate] {
			continue
		}
		if err := r.Git.ConfigSet(ctx, SettingDefaultRemote, candidate); err != nil {
			return "", err
		}
		return candidate, nil
	}

	return "", fmt.Errorf("%w (tried: %s); set one with 'switchbox config default-remote <name>'",
		ErrNoDefaultRemote, strings.Join(r.RemoteCandidates, ", "))
}

// Target returns the ref branches are compared against: the remote-tracking
// ref of the default branch when it exists, the local default branch
// otherwise. A non-empty override skips detection, but must resolve.
func (r *Resolver) Target(ctx context.Context, override string) (string, error) {
	if override != "" {
		ok, err := r.Git.HasRef(ctx, override)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("target %q does not resolve to a commit", override)
		}
		return override, nil
	}

	branch, err := r.DefaultBranch(ctx)
	if err != nil {
		return "", err
	}

	remote, err := r.DefaultRemote(ctx)
	if errors.Is(err, ErrNoDefaultRemote) {
		return branch, nil
	}
	if err != nil {
		return "", err
	}

	ref := remote + "/" + branch
	ok, err := r.Git.HasRef(ctx, ref)
	if err != nil {
		return "", err
	}
	if ok {
		return ref, nil
	}
	return branch, nil
}

// Redetect drops the persisted choices and runs detection again. A missing
// default remote is reported as an empty name rather than an error, since
// purely local repositories are fine to work in.
func (r *Resolver) Redetect(ctx context.Context) (branch, remote string, err error) {
	if err := r.Git.ConfigUnset(ctx, SettingDefaultBranch); err != nil {
		return "", "", err
	}
	if err := r.Git.ConfigUnset(ctx, SettingDefaultRemote); err != nil {
		return "", "", err
	}

	// Remote first: branch detection may need it for the hosted lookup.
	remote, err = r.DefaultRemote(ctx)
	if err != nil && !errors.Is(err, ErrNoDefaultRemote) {
		return "", "", err
	}
	branch, err = r.DefaultBranch(ctx)
	if err != nil {
		return "", "", err
	}
	return branch, remote, nil
}
