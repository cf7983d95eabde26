package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/instctl/instctl/pkg/engine/planner"
	"github.com/instctl/instctl/pkg/schema/installable"
)

func newValidateCmd() *cobra.Command {
	var (
		installablesPath string
		schemaPath       string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an installables document without executing it",
		Long: `Checks the document against the JSON Schema and the structural rules
(unique ids, per-type required fields), then verifies that the dependency
relation resolves and is acyclic.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			var loader *installable.Loader
			var err error
			if schemaPath != "" {
				loader, err = installable.NewLoaderWithSchema(schemaPath)
			} else {
				loader, err = installable.NewLoader()
			}
			if err != nil {
				return err
			}

			doc, err := loader.Load(installablesPath)
			if err != nil {
				return err
			}

			plan, err := planner.ComputeExecutionOrder(doc)
			if err != nil {
				return err
			}

			fmt.Printf("%s is valid (%d installables)\n", installablesPath, len(plan.Nodes))
			for i, id := range plan.IDs() {
				fmt.Printf("  %2d. %s\n", i+1, id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&installablesPath, "installables", "", "Path to the installables document (required)")
	cmd.Flags().StringVar(&schemaPath, "schema", "", "Path to the installables JSON Schema (default: built-in)")
	_ = cmd.MarkFlagRequired("installables")

	return cmd
}
