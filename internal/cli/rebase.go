package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/borntyping/switchbox/internal/engine"
	"github.com/borntyping/switchbox/internal/flags"
)

var rebasePush bool

var rebaseCmd = &cobra.Command{
	Use:   "rebase",
	Short: "Rebase the active branch onto the remote default branch",
	Long: `Rebase the active branch onto the default branch's remote-tracking ref,
then force push it back with a lease.

The rebase runs with --update-refs, so stacked branches pointing into the
rebased history move along with it. The push lease expects the remote branch
to still point at the commit the local branch had before rebasing; if
someone else pushed in the meantime, the push fails and nothing is
overwritten.

Exit codes:
	0 = rebased (and pushed)
	2 = rebased, but the push failed
	3 = fatal error (nothing was rebased)

Examples:
	# Rebase and publish the current branch
	switchbox rebase

	# Rebase only, keep the result local
	switchbox rebase --push=false
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, func(ctx context.Context, eng *engine.Engine) int {
			return eng.Rebase(ctx, rebasePush)
		})
	},
}

func init() {
	rootCmd.AddCommand(rebaseCmd)
	rebaseCmd.Flags().BoolVar(&rebasePush, flags.FlagPush, true, "Force push the rebased branch with a lease")
	addUpdateFlags(rebaseCmd)
}
