package cli

import (
	"github.com/spf13/cobra"

	"github.com/instctl/instctl/pkg/engine"
)

func newDeleteCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete every installable in dependency order",
		Long: `Walks the same execution plan as apply, invoking each installable's delete
action. Deletions are idempotent: already-absent releases and resources are
not errors.

Examples:
  instctl delete --installables deploy/installables.yaml --values deploy/values.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, engine.ActionDelete, flags)
		},
	}

	flags.register(cmd)
	return cmd
}
