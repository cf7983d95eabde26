// Package engine orchestrates installable execution plans.
package engine

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/instctl/instctl/pkg/engine/executor"
	"github.com/instctl/instctl/pkg/engine/planner"
	"github.com/instctl/instctl/pkg/engine/registry"
	"github.com/instctl/instctl/pkg/engine/substitute"
	"github.com/instctl/instctl/pkg/envfile"
	"github.com/instctl/instctl/pkg/errors"
	"github.com/instctl/instctl/pkg/progress"
	"github.com/instctl/instctl/pkg/schema/installable"
	"github.com/instctl/instctl/pkg/values"
)

// Action selects the executor entry point for a run.
type Action string

const (
	ActionApply  Action = "apply"
	ActionDelete Action = "delete"
)

// Options configures a run.
type Options struct {
	// InstallablesPath locates the installables document.
	InstallablesPath string

	// ValuesPath locates the values document.
	ValuesPath string

	// SchemaPath locates the JSON Schema; empty selects the embedded default.
	SchemaPath string

	// EnvFilePath locates a dotenv file. Empty means a .env file next to the
	// installables document is used when present.
	EnvFilePath string

	KubeContext string
	DryRun      bool
	Wait        bool
	Timeout     time.Duration
}

// NodeResult records the outcome of one plan node.
type NodeResult struct {
	ID       string
	Status   progress.Status
	Err      error
	Duration time.Duration
}

// Result summarizes a run.
type Result struct {
	RunID     string
	Success   bool
	Succeeded int
	Failed    int
	Skipped   int
	Nodes     []NodeResult
	Duration  time.Duration
}

// Engine drives apply and delete runs. Execution is strictly sequential along
// the computed plan order; the only suspension point is the subprocess each
// executor blocks on.
type Engine struct {
	runner   executor.Runner
	reporter *progress.Manager
	log      zerolog.Logger

	// preflight is swapped out in tests.
	preflight func(binaries ...string) error
}

// New creates an engine. The reporter may be nil when no progress output is
// wanted.
func New(runner executor.Runner, reporter *progress.Manager, log zerolog.Logger) *Engine {
	return &Engine{
		runner:    runner,
		reporter:  reporter,
		log:       log,
		preflight: executor.Preflight,
	}
}

// Apply drives every installable in the plan through its apply action.
func (e *Engine) Apply(ctx context.Context, opts Options) (*Result, error) {
	return e.run(ctx, ActionApply, opts)
}

// Delete drives every installable in the plan through its delete action.
func (e *Engine) Delete(ctx context.Context, opts Options) (*Result, error) {
	return e.run(ctx, ActionDelete, opts)
}

func (e *Engine) run(ctx context.Context, action Action, opts Options) (*Result, error) {
	startTime := time.Now()
	result := &Result{RunID: uuid.NewString(), Success: true}

	doc, vals, envMap, err := e.load(opts)
	if err != nil {
		return nil, err
	}

	plan, err := planner.ComputeExecutionOrder(doc)
	if err != nil {
		return nil, err
	}

	if err := e.preflight(executor.Binaries(doc)...); err != nil {
		return nil, err
	}

	for _, node := range plan.Nodes {
		e.addTask(node)
	}

	execCtx := executor.Context{
		DryRun:      opts.DryRun,
		Wait:        opts.Wait,
		Timeout:     opts.Timeout,
		KubeContext: opts.KubeContext,
		BaseDir:     doc.BaseDir,
	}

	for i, node := range plan.Nodes {
		nodeResult := e.runNode(ctx, action, node, vals, envMap, execCtx, opts.DryRun)
		result.Nodes = append(result.Nodes, nodeResult)

		switch nodeResult.Status {
		case progress.StatusSuccess:
			result.Succeeded++
		case progress.StatusSkipped:
			result.Skipped++
		case progress.StatusFailed:
			result.Failed++
			result.Success = false
		}

		// Substitution failures mean the document cannot be rendered
		// completely; applying the remainder could silently install partial
		// configuration, so the run halts here.
		if nodeResult.Err != nil && errors.Is(nodeResult.Err, errors.ErrCodeSubstitution) {
			e.abortRemaining(result, plan.Nodes[i+1:])
			result.Duration = time.Since(startTime)
			return result, nodeResult.Err
		}

		if ctx.Err() != nil {
			e.abortRemaining(result, plan.Nodes[i+1:])
			result.Success = false
			result.Duration = time.Since(startTime)
			return result, ctx.Err()
		}
	}

	result.Duration = time.Since(startTime)
	return result, nil
}

// load reads and validates every input document before any execution begins.
func (e *Engine) load(opts Options) (*installable.Document, values.Tree, map[string]string, error) {
	var loader *installable.Loader
	var err error
	if opts.SchemaPath != "" {
		loader, err = installable.NewLoaderWithSchema(opts.SchemaPath)
	} else {
		loader, err = installable.NewLoader()
	}
	if err != nil {
		return nil, nil, nil, err
	}

	doc, err := loader.Load(opts.InstallablesPath)
	if err != nil {
		return nil, nil, nil, err
	}

	vals, err := values.Load(opts.ValuesPath)
	if err != nil {
		return nil, nil, nil, err
	}

	var envMap map[string]string
	if opts.EnvFilePath != "" {
		envMap, err = envfile.Load(opts.EnvFilePath)
	} else {
		envMap, err = envfile.LoadIfExists(filepath.Join(doc.BaseDir, ".env"))
	}
	if err != nil {
		return nil, nil, nil, err
	}

	return doc, vals, envMap, nil
}

// abortRemaining marks plan nodes a halted run never reached, so the final
// report does not leave them looking pending.
func (e *Engine) abortRemaining(result *Result, nodes []*installable.Installable) {
	for _, node := range nodes {
		if e.reporter != nil {
			e.reporter.Abort(node.ID)
		}
		result.Nodes = append(result.Nodes, NodeResult{ID: node.ID, Status: progress.StatusSkipped})
		result.Skipped++
	}
}

func (e *Engine) addTask(node *installable.Installable) {
	if e.reporter != nil {
		e.reporter.Add(node.ID, node.Description())
	}
}

// runNode takes one node through condition gating, substitution, dotted-path
// resolution, credential resolution, and executor dispatch. Execution errors
// are attributed to the node and do not stop the plan.
func (e *Engine) runNode(
	ctx context.Context,
	action Action,
	node *installable.Installable,
	vals values.Tree,
	envMap map[string]string,
	execCtx executor.Context,
	allowMissing bool,
) NodeResult {
	startTime := time.Now()

	if !values.EvaluateCondition(vals, node.Condition) {
		e.log.Info().Str("id", node.ID).Str("condition", node.Condition).
			Msg("condition not met, skipping")
		if e.reporter != nil {
			e.reporter.Skip(node.ID)
		}
		return NodeResult{ID: node.ID, Status: progress.StatusSkipped}
	}

	var step *progress.Step
	if e.reporter != nil {
		step = e.reporter.Step(node.ID)
	}

	err := e.executeNode(ctx, action, node, vals, envMap, execCtx, allowMissing)

	if step != nil {
		step.Finish(err)
	}

	status := progress.StatusSuccess
	if err != nil {
		status = progress.StatusFailed
		e.log.Error().Str("id", node.ID).Err(err).Msg("installable failed")
	} else {
		e.log.Info().Str("id", node.ID).Str("action", string(action)).Msg("installable done")
	}

	return NodeResult{
		ID:       node.ID,
		Status:   status,
		Err:      err,
		Duration: time.Since(startTime),
	}
}

func (e *Engine) executeNode(
	ctx context.Context,
	action Action,
	node *installable.Installable,
	vals values.Tree,
	envMap map[string]string,
	execCtx executor.Context,
	allowMissing bool,
) error {
	resolved, err := resolveNode(node, vals, envMap, allowMissing)
	if err != nil {
		return err
	}

	if resolved.Type == installable.TypeHelm {
		creds, err := registry.Resolve(resolved.RepoCredentials, vals)
		if err != nil {
			return err
		}
		execCtx.Credentials = creds
	}

	ex, err := executor.For(resolved.Type, e.runner)
	if err != nil {
		return err
	}

	if execCtx.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, execCtx.Timeout)
		defer cancel()
	}

	if action == ActionDelete {
		return ex.Delete(ctx, resolved, execCtx)
	}
	return ex.Apply(ctx, resolved, execCtx)
}

// resolveNode substitutes ${VAR} placeholders in the node's raw form, decodes
// the result back into a typed installable, and resolves dotted-path fields to
// literal scalars. The original node is never mutated.
func resolveNode(
	node *installable.Installable,
	vals values.Tree,
	envMap map[string]string,
	allowMissing bool,
) (*installable.Installable, error) {
	resolved := node

	if node.Raw != nil {
		substituted, err := substitute.Substitute(node.Raw, envMap, allowMissing)
		if err != nil {
			return nil, err
		}

		data, err := yaml.Marshal(substituted)
		if err != nil {
			return nil, errors.ParseError(node.ID, err)
		}
		resolved = &installable.Installable{}
		if err := yaml.Unmarshal(data, resolved); err != nil {
			return nil, errors.ParseError(node.ID, err)
		}
		resolved.Raw = node.Raw
	}

	if resolved.Type == installable.TypeKubectlLabel {
		out := *resolved
		if _, ok := values.Lookup(vals, resolved.Namespace); ok {
			s, err := values.LookupString(vals, resolved.Namespace)
			if err != nil {
				return nil, err
			}
			out.Namespace = s
		}

		labels := make(map[string]string, len(resolved.Labels))
		for key, value := range resolved.Labels {
			if s, err := values.LookupString(vals, value); err == nil {
				labels[key] = s
			} else {
				labels[key] = value
			}
		}
		out.Labels = labels
		resolved = &out
	}

	return resolved, nil
}
