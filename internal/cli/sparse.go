package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/borntyping/switchbox/internal/engine"
	"github.com/borntyping/switchbox/internal/flags"
)

var sparseCmd = &cobra.Command{
	Use:   "sparse",
	Short: "Hide configured paths from the working tree",
	Long: `Configure a sparse checkout that includes everything except the excluded
paths.

The exclude list comes from --exclude and the configuration file; by default
it hides /.idea/. Run the command again after changing the list to reapply
it to the working tree.

Examples:
	switchbox sparse
	switchbox sparse --exclude /.idea/,/docs/
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, func(ctx context.Context, eng *engine.Engine) int {
			return eng.Sparse(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(sparseCmd)
	sparseCmd.Flags().StringSliceVar(&cfg.Sparse.Exclude, flags.FlagExclude, cfg.Sparse.Exclude, "Paths to hide from the working tree (repeatable; comma-separated accepted)")
}
