package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/instctl/instctl/pkg/engine"
	"github.com/instctl/instctl/pkg/engine/executor"
	"github.com/instctl/instctl/pkg/progress"
)

// runFlags is the shared flag surface of the apply and delete commands.
type runFlags struct {
	installables string
	values       string
	schema       string
	envFile      string
	kubeContext  string
	dryRun       bool
	wait         bool
	timeout      time.Duration
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.installables, "installables", "", "Path to the installables document (required)")
	cmd.Flags().StringVar(&f.values, "values", "", "Path to the values document (required)")
	cmd.Flags().StringVar(&f.schema, "schema", "", "Path to the installables JSON Schema (default: built-in)")
	cmd.Flags().StringVar(&f.envFile, "env-file", "", "Path to a dotenv file (default: .env next to the installables document)")
	cmd.Flags().StringVar(&f.kubeContext, "kube-context", "", "Kubernetes context to target")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Render and plan without mutating the cluster")
	cmd.Flags().BoolVar(&f.wait, "wait", false, "Wait for each installable to become ready")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Per-installable timeout (e.g. 5m)")

	_ = cmd.MarkFlagRequired("installables")
	_ = cmd.MarkFlagRequired("values")
}

func (f *runFlags) options() engine.Options {
	return engine.Options{
		InstallablesPath: f.installables,
		ValuesPath:       f.values,
		SchemaPath:       f.schema,
		EnvFilePath:      f.envFile,
		KubeContext:      f.kubeContext,
		DryRun:           f.dryRun,
		Wait:             f.wait,
		Timeout:          f.timeout,
	}
}

// runAction executes an apply or delete run and maps the outcome to the
// process exit status: any failed node makes the command fail.
func runAction(cmd *cobra.Command, action engine.Action, flags *runFlags) error {
	cmd.SilenceUsage = true

	log := newLogger()
	reporter := progress.NewManager(os.Stdout)
	runner := &executor.ExecRunner{Log: log}
	eng := engine.New(runner, reporter, log)

	var result *engine.Result
	var err error
	switch action {
	case engine.ActionDelete:
		result, err = eng.Delete(context.Background(), flags.options())
	default:
		result, err = eng.Apply(context.Background(), flags.options())
	}

	if result != nil {
		reporter.Summary()
	}
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("%d of %d installables failed", result.Failed, len(result.Nodes))
	}
	return nil
}
