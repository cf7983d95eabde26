// Package executor implements the per-type apply/delete actions.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/instctl/instctl/pkg/engine/registry"
	"github.com/instctl/instctl/pkg/schema/installable"
)

// Context carries the run-level execution settings passed to every executor.
type Context struct {
	DryRun      bool
	Wait        bool
	Timeout     time.Duration
	KubeContext string

	// BaseDir is the directory of the installables document; relative manifest
	// and script paths resolve against it.
	BaseDir string

	// Credentials holds resolved registry credentials for the current node,
	// nil when the node declares none.
	Credentials *registry.Credentials
}

// EffectiveWait applies the per-installable wait override, falling back to the
// run-level default.
func (c Context) EffectiveWait(inst *installable.Installable) bool {
	if inst.Wait != nil {
		return *inst.Wait
	}
	return c.Wait
}

// Executor drives one installable type through its idempotent actions.
type Executor interface {
	Apply(ctx context.Context, inst *installable.Installable, opts Context) error
	Delete(ctx context.Context, inst *installable.Installable, opts Context) error
}

// For returns the executor for the given installable type.
func For(t installable.Type, runner Runner) (Executor, error) {
	switch t {
	case installable.TypeHelm:
		return &Helm{Runner: runner}, nil
	case installable.TypeKubectlApply:
		return &KubectlApply{Runner: runner}, nil
	case installable.TypeKubectlLabel:
		return &KubectlLabel{Runner: runner}, nil
	case installable.TypeTask:
		return &Task{Runner: runner}, nil
	default:
		return nil, fmt.Errorf("no executor for installable type %q", t)
	}
}

// Binaries returns the external binaries the document's installables depend on.
func Binaries(doc *installable.Document) []string {
	needed := make(map[string]bool)
	for _, inst := range doc.Installables {
		switch inst.Type {
		case installable.TypeHelm:
			needed["helm"] = true
		case installable.TypeKubectlApply, installable.TypeKubectlLabel:
			needed["kubectl"] = true
		}
	}

	var binaries []string
	for _, b := range []string{"helm", "kubectl"} {
		if needed[b] {
			binaries = append(binaries, b)
		}
	}
	return binaries
}
