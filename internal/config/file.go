package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/borntyping/switchbox/internal/flags"
)

// FileName is the optional per-repository configuration file, looked up at
// the repository root.
const FileName = ".switchbox.toml"

// UserFileName is the optional user-level configuration file, looked up in
// the platform config directory under a "switchbox" subdirectory.
const UserFileName = "switchbox.toml"

// File mirrors the sections of Config that make sense to pin per repository.
// Booleans are pointers so an absent key can be told apart from false.
type File struct {
	Detect FileDetect `toml:"detect"`
	Tidy   FileTidy   `toml:"tidy"`
	Update FileUpdate `toml:"update"`
	Sparse FileSparse `toml:"sparse"`
}

type FileDetect struct {
	BranchNames []string `toml:"branch_names,omitempty"`
	RemoteNames []string `toml:"remote_names,omitempty"`
}

type FileTidy struct {
	Merged   *bool    `toml:"merged,omitempty"`
	Rebased  *bool    `toml:"rebased,omitempty"`
	Squashed *bool    `toml:"squashed,omitempty"`
	Target   string   `toml:"target,omitempty"`
	Protect  []string `toml:"protect,omitempty"`
}

type FileUpdate struct {
	Enabled *bool `toml:"enabled,omitempty"`
	Prune   *bool `toml:"prune,omitempty"`
	Jobs    int   `toml:"jobs,omitempty"`
}

type FileSparse struct {
	Exclude []string `toml:"exclude,omitempty"`
}

// LoadFile reads the configuration file from the repository root at dir.
// A missing file is not an error; callers get a nil *File back.
func LoadFile(dir string) (*File, error) {
	var f File
	if _, err := toml.DecodeFile(filepath.Join(dir, FileName), &f); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}
	return &f, nil
}

// LoadUserFile reads the user-level configuration file. A missing file, or a
// platform without a config directory, is not an error.
func LoadUserFile() (*File, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, nil
	}
	var f File
	if _, err := toml.DecodeFile(filepath.Join(dir, "switchbox", UserFileName), &f); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading user configuration: %w", err)
	}
	return &f, nil
}

// Apply overlays file values onto cfg. Lists replace the built-in defaults
// wholesale; absent keys leave cfg untouched. skip reports config fields
// that were set explicitly elsewhere (CLI flags) and must win over the file.
func (f *File) Apply(cfg *Config, skip func(flag string) bool) {
	if f == nil {
		return
	}
	if skip == nil {
		skip = func(string) bool { return false }
	}

	if len(f.Detect.BranchNames) > 0 && !skip(flags.FlagDefaultBranch) {
		cfg.Detect.BranchNames = f.Detect.BranchNames
	}
	if len(f.Detect.RemoteNames) > 0 && !skip(flags.FlagDefaultRemote) {
		cfg.Detect.RemoteNames = f.Detect.RemoteNames
	}

	if f.Tidy.Merged != nil && !skip(flags.FlagMerged) {
		cfg.Tidy.Merged = *f.Tidy.Merged
	}
	if f.Tidy.Rebased != nil && !skip(flags.FlagRebased) {
		cfg.Tidy.Rebased = *f.Tidy.Rebased
	}
	if f.Tidy.Squashed != nil && !skip(flags.FlagSquashed) {
		cfg.Tidy.Squashed = *f.Tidy.Squashed
	}
	if f.Tidy.Target != "" && !skip(flags.FlagTarget) {
		cfg.Tidy.Target = f.Tidy.Target
	}
	if len(f.Tidy.Protect) > 0 && !skip(flags.FlagProtect) {
		cfg.Tidy.Protect = f.Tidy.Protect
	}

	if f.Update.Enabled != nil && !skip(flags.FlagUpdate) {
		cfg.Update.Enabled = *f.Update.Enabled
	}
	if f.Update.Prune != nil && !skip(flags.FlagPrune) {
		cfg.Update.Prune = *f.Update.Prune
	}
	if f.Update.Jobs > 0 && !skip(flags.FlagJobs) {
		cfg.Update.Jobs = f.Update.Jobs
	}

	if len(f.Sparse.Exclude) > 0 && !skip(flags.FlagExclude) {
		cfg.Sparse.Exclude = f.Sparse.Exclude
	}
}
