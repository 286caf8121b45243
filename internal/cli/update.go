package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/borntyping/switchbox/internal/engine"
	"github.com/borntyping/switchbox/internal/flags"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch every remote",
	Long: `Fetch every remote, several at a time.

With pruning enabled (the default), remote-tracking refs whose upstream
branches are gone are dropped, keeping the local view of each remote in
step with it.

Examples:
	switchbox update
	switchbox update --jobs 8
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, func(ctx context.Context, eng *engine.Engine) int {
			return eng.Update(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().BoolVar(&cfg.Update.Prune, flags.FlagPrune, cfg.Update.Prune, "Drop remote-tracking refs deleted upstream while fetching")
	updateCmd.Flags().IntVar(&cfg.Update.Jobs, flags.FlagJobs, cfg.Update.Jobs, "Concurrent remote fetches")
}
