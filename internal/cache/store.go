// Package cache persists squash-scan positions between runs. Scanning a busy
// target branch means one diff per commit, so runs record the last commit
// they cleared for each branch and later runs continue from there. Entries
// live in the repository's own config file under one subsection per branch,
// and are purely advisory: a missing or stale entry just means a full rescan.
package cache

import (
	"context"
	"fmt"
)

const section = "switchbox"

// Option names within a branch subsection. These match the layout
//
//	[switchbox "feature/login"]
//		upstream = origin/main
//		squashed = 1234abcd...
const (
	optionUpstream = "upstream"
	optionSquashed = "squashed"
)

// ConfigStore is the slice of repository config access the cache needs.
// *git.Repository satisfies it.
type ConfigStore interface {
	ConfigGet(ctx context.Context, key string) (string, bool, error)
	ConfigSet(ctx context.Context, key, value string) error
	ConfigRemoveSection(ctx context.Context, section string) error
}

// Entry records how far a squash scan of Branch against Target got.
type Entry struct {
	Branch string
	Target string
	Commit string
}

type Store struct {
	config ConfigStore
}

func New(config ConfigStore) *Store {
	return &Store{config: config}
}

// Load reads the entry for a branch. ok is false when no complete entry is
// stored.
func (s *Store) Load(ctx context.Context, branch string) (Entry, bool, error) {
	target, ok, err := s.config.ConfigGet(ctx, optionKey(branch, optionUpstream))
	if err != nil || !ok {
		return Entry{}, false, err
	}
	commit, ok, err := s.config.ConfigGet(ctx, optionKey(branch, optionSquashed))
	if err != nil || !ok {
		return Entry{}, false, err
	}
	return Entry{Branch: branch, Target: target, Commit: commit}, true, nil
}

// Save writes the entry for a branch, replacing any previous one.
func (s *Store) Save(ctx context.Context, entry Entry) error {
	if entry.Branch == "" || entry.Target == "" || entry.Commit == "" {
		return fmt.Errorf("cache: refusing to save incomplete entry %+v", entry)
	}
	if err := s.config.ConfigSet(ctx, optionKey(entry.Branch, optionUpstream), entry.Target); err != nil {
		return err
	}
	return s.config.ConfigSet(ctx, optionKey(entry.Branch, optionSquashed), entry.Commit)
}

// Invalidate drops the entry for a branch. Dropping an absent entry is fine.
func (s *Store) Invalidate(ctx context.Context, branch string) error {
	return s.config.ConfigRemoveSection(ctx, section+"."+branch)
}

// Resume returns the stored scan position for a branch, provided it was
// recorded against the same target. Anything else is a silent miss: the
// cache only ever saves work, it never changes an outcome.
func (s *Store) Resume(ctx context.Context, branch, target string) (string, bool) {
	entry, ok, err := s.Load(ctx, branch)
	if err != nil || !ok {
		return "", false
	}
	if entry.Target != target {
		return "", false
	}
	return entry.Commit, true
}

// optionKey builds the flat config key for an option in a branch subsection.
// git splits on the first and last dot, so branch names containing dots or
// slashes pass through intact.
func optionKey(branch, option string) string {
	return section + "." + branch + "." + option
}
