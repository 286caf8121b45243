package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/borntyping/switchbox/internal/engine"
	"github.com/borntyping/switchbox/internal/flags"
)

const tidyHelpTemplate = `{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}Usage:
  {{.UseLine}}

{{if .HasAvailableLocalFlags}}Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}Environment:
	When no local head matches a default branch candidate, switchbox can
	ask GitHub for the repository's default branch. A token is optional;
	public repositories resolve anonymously.

	Token sources (in order):
	1) GITHUB_TOKEN environment variable
	2) GitHub CLI (gh) authentication via gh auth token (if gh is installed and logged in)

{{if .HasAvailableSubCommands}}Available Commands:
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`

var tidyCmd = &cobra.Command{
	Use:   "tidy",
	Short: "Remove branches whose changes the target already carries",
	Long: `Classify every local branch against the target and remove the ones whose
changes it already carries.

Three checks run in cheap-to-expensive order:
  merged    the branch tip is an ancestor of the target
  rebased   every branch commit has a patch-equivalent commit on the target
  squashed  a single target commit reproduces the branch's whole diff

A branch that fails all three is kept. Squash scanning remembers how far it
got in the repository's git config, so the next run only looks at target
commits that are new since.

The target is the remote-tracking ref of the default branch when it exists,
the local default branch otherwise (see "switchbox config"). Branches checked
out in any worktree are never candidates; --protect excludes more.

Output:
	Console output is controlled by --console-format (default: text).
	Structured outputs can be written via:
	- --out / --out-format: write an aggregate JSON array or NDJSON stream to a file
	- --emit: write an additional structured stream to stdout (json or ndjson)
	- --no-console: suppress the console sink (use with --emit/--out for machine output)

	NDJSON mode emits one JSON object per line. Objects are lifecycle Events with a
	"type" field (run.started, strategy.started, branch.result, run.finished).
	Each branch.result carries the branch's classification and deletion state.

Exit codes:
	0 = clean run
	2 = partial failure (some branches could not be classified or removed)
	3 = fatal error (run did not complete)

Examples:
	# See what would be removed
	switchbox tidy --dry-run

	# Keep release branches no matter what
	switchbox tidy --protect 'release/*'

	# Stream machine-readable events to stdout
	switchbox tidy --no-console --emit ndjson
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, func(ctx context.Context, eng *engine.Engine) int {
			return eng.Tidy(ctx)
		})
	},
}

// Flags shared by tidy and finish. Both run a classification pass, so they
// accept the same knobs.
func addTidyFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&cfg.Tidy.Merged, flags.FlagMerged, cfg.Tidy.Merged, "Remove branches merged into the target")
	cmd.Flags().BoolVar(&cfg.Tidy.Rebased, flags.FlagRebased, cfg.Tidy.Rebased, "Remove branches with patch-equivalent commits on the target")
	cmd.Flags().BoolVar(&cfg.Tidy.Squashed, flags.FlagSquashed, cfg.Tidy.Squashed, "Remove branches squashed onto the target")
	cmd.Flags().BoolVar(&cfg.Tidy.DryRun, flags.FlagDryRun, false, "Report removable branches without deleting anything")
	cmd.Flags().StringVar(&cfg.Tidy.Target, flags.FlagTarget, "", "Classify against this ref instead of the detected target")
	cmd.Flags().StringSliceVar(&cfg.Tidy.Protect, flags.FlagProtect, nil, "Never remove branches matching these patterns (repeatable; comma-separated accepted; Go path.Match style)")
}

func addUpdateFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&cfg.Update.Enabled, flags.FlagUpdate, cfg.Update.Enabled, "Fetch all remotes first")
	cmd.Flags().BoolVar(&cfg.Update.Prune, flags.FlagPrune, cfg.Update.Prune, "Drop remote-tracking refs deleted upstream while fetching")
	cmd.Flags().IntVar(&cfg.Update.Jobs, flags.FlagJobs, cfg.Update.Jobs, "Concurrent remote fetches")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&cfg.Output.ConsoleFormat, flags.FlagConsoleFormat, cfg.Output.ConsoleFormat, "Console output format: text|json|ndjson")
	cmd.Flags().StringSliceVar(&cfg.Output.ConsoleFilterState, flags.FlagConsoleFilterState, nil, "Filter console output by branch state (removable, removed, not-removable). Comma-separated.")
	cmd.Flags().StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write a Markdown report to this path")
	cmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	cmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	cmd.Flags().StringSliceVar(&cfg.Output.Emit, flags.FlagEmit, nil, "Emit additional structured stream to stdout: json|ndjson (repeatable; comma-separated accepted)")
	cmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --emit/--out/--report)")
}

func init() {
	rootCmd.AddCommand(tidyCmd)
	tidyCmd.SetHelpTemplate(tidyHelpTemplate)

	addTidyFlags(tidyCmd)
	addUpdateFlags(tidyCmd)
	addOutputFlags(tidyCmd)
}
