package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/borntyping/switchbox/internal/flags"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "switchbox",
	Short: "Tools for rapidly switching between tasks in a git repository",
	Long: `Switchbox automates the everyday busywork of feature branch development:
it finds local branches whose changes the default branch already carries
(merged, rebased or squashed), removes them, and keeps the default branch
itself fresh.

What switchbox learns about a repository, the default branch and remote and
how far squash scanning got, is stored in the repository's own git config
under the "switchbox" section, so every command agrees on what "the default
branch" means.

Examples:
	# Remove local branches that were merged, rebased or squashed
	switchbox tidy

	# Pull the default branch, switch to it, then tidy
	switchbox finish

	# Show the settings stored for this repository
	switchbox config

Output:
	By default, commands write human-readable output to stdout.
	tidy and finish also support structured output via emitter flags (see their --help).`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfg.Runtime.Path, flags.FlagRepo, "", "Operate on the repository containing this directory (default: current directory)")
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, flags.FlagVerbose, false, "Enable verbose logging (prints every git invocation and full error details)")
	rootCmd.PersistentFlags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, cfg.Runtime.Timeout, "Global timeout for the whole run")
	rootCmd.PersistentFlags().StringSliceVar(&cfg.Detect.BranchNames, flags.FlagDefaultBranch, cfg.Detect.BranchNames, "Candidate default branch names, probed in order when none is stored")
	rootCmd.PersistentFlags().StringSliceVar(&cfg.Detect.RemoteNames, flags.FlagDefaultRemote, cfg.Detect.RemoteNames, "Candidate default remote names, probed in order when none is stored")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
