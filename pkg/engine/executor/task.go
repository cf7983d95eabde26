package executor

import (
	"context"

	"github.com/instctl/instctl/pkg/errors"
	"github.com/instctl/instctl/pkg/schema/installable"
)

// Task executes an arbitrary script. Tasks have no dry-run protocol of their
// own, so dry-run skips them entirely; declared tasks are expected to be safe
// to re-run.
type Task struct {
	Runner Runner
}

// Apply runs the script with applyArgs appended.
func (t *Task) Apply(ctx context.Context, inst *installable.Installable, opts Context) error {
	if opts.DryRun {
		return nil
	}

	cmd := Command{
		Binary: resolvePath(opts.BaseDir, inst.Command),
		Args:   inst.ApplyArgs,
		Dir:    opts.BaseDir,
	}

	output, err := t.Runner.Run(ctx, cmd)
	if err != nil {
		return errors.ExecutionError(inst.ID, err, output)
	}
	return nil
}

// Delete is a no-op: task scripts declare only an apply action.
func (t *Task) Delete(ctx context.Context, inst *installable.Installable, opts Context) error {
	return nil
}
