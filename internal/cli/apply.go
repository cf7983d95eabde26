package cli

import (
	"github.com/spf13/cobra"

	"github.com/instctl/instctl/pkg/engine"
)

func newApplyCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply every installable in dependency order",
		Long: `Validates the installables document, computes the execution plan, and
drives every installable through its apply action.

Installables gated off by their condition are skipped. A failing installable
is recorded and the run continues, so the final report shows the complete
picture; the command still exits non-zero.

Examples:
  instctl apply --installables deploy/installables.yaml --values deploy/values.yaml
  instctl apply --installables deploy/installables.yaml --values deploy/values.yaml --dry-run
  instctl apply --installables deploy/installables.yaml --values deploy/values.yaml --wait --timeout 10m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, engine.ActionApply, flags)
		},
	}

	flags.register(cmd)
	return cmd
}
