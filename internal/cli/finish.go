package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/borntyping/switchbox/internal/engine"
)

var finishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Update the default branch, switch to it, then tidy",
	Long: `Finish work on the current branch: bring the local default branch up to
date with its remote counterpart, switch to it, then run a tidy pass.

Switching first means the branch being finished is itself a removal
candidate once its changes have landed on the target.

The default branch is fast-forwarded when it is the one checked out here,
and reset to the remote ref otherwise. Repositories without a usable remote
skip the update and just switch.

Classification flags, output flags and exit codes match "switchbox tidy"
(see its --help).

Examples:
	# Land the current branch's work and clean up
	switchbox finish
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, func(ctx context.Context, eng *engine.Engine) int {
			return eng.Finish(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(finishCmd)
	addTidyFlags(finishCmd)
	addUpdateFlags(finishCmd)
	addOutputFlags(finishCmd)
}
