// Package flags defines canonical CLI flag names shared across the CLI and
// other code paths that need to reference flags (e.g. the configuration file
// overlay, which must not override flags the user set explicitly).
package flags

// Flag *names* without leading dashes. Example usage:
//
//	cmd.Flags().StringVar(&cfg.Tidy.Target, flags.FlagTarget, "", "...")
//	arg := "--" + flags.FlagTarget
const (
	// Global
	FlagRepo    = "repo"
	FlagVerbose = "verbose"
	FlagTimeout = "timeout"

	// Target detection
	FlagDefaultBranch = "default-branch"
	FlagDefaultRemote = "default-remote"
	FlagTarget        = "target"

	// Tidy
	FlagMerged   = "merged"
	FlagRebased  = "rebased"
	FlagSquashed = "squashed"
	FlagDryRun   = "dry-run"
	FlagProtect  = "protect"

	// Update
	FlagUpdate = "update"
	FlagPrune  = "prune"
	FlagJobs   = "jobs"

	// Sparse checkout
	FlagExclude = "exclude"

	// Rebase
	FlagPush = "push"

	// Output
	FlagConsoleFormat      = "console-format"
	FlagConsoleFilterState = "console-filter-state"
	FlagReport             = "report"
	FlagOut                = "out"
	FlagOutFormat          = "out-format"
	FlagEmit               = "emit"
	FlagNoConsole          = "no-console"
)
