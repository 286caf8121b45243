package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/borntyping/switchbox/internal/engine"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and store per-repository settings",
	Long: `Show the settings stored for this repository.

Switchbox keeps everything it learns about a repository in the repository's
own git config, under the "switchbox" section: the default branch, the
default remote, and per-branch squash-scan positions. Run without arguments
to list them all.

Examples:
	# List stored settings
	switchbox config

	# Detect the default branch and remote again from scratch
	switchbox config init

	# Pin the choices explicitly
	switchbox config default-branch trunk
	switchbox config default-remote upstream
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, func(ctx context.Context, eng *engine.Engine) int {
			return eng.Settings(ctx)
		})
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Detect and store the default branch and remote",
	Long: `Drop the stored default branch and remote and detect them again.

Useful after the upstream default branch was renamed, or when a stored
choice points at a branch that no longer exists.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, func(ctx context.Context, eng *engine.Engine) int {
			return eng.InitSettings(ctx)
		})
	},
}

var configDefaultBranchCmd = &cobra.Command{
	Use:   "default-branch <name>",
	Short: "Store the default branch explicitly",
	Long: `Store the branch every command treats as the default. The branch does not
have to exist yet.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, func(ctx context.Context, eng *engine.Engine) int {
			return eng.SetDefaultBranch(ctx, args[0])
		})
	},
}

var configDefaultRemoteCmd = &cobra.Command{
	Use:   "default-remote <name>",
	Short: "Store the default remote explicitly",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, func(ctx context.Context, eng *engine.Engine) int {
			return eng.SetDefaultRemote(ctx, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configDefaultBranchCmd)
	configCmd.AddCommand(configDefaultRemoteCmd)
}
