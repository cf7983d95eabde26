package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"

	"github.com/instctl/instctl/pkg/errors"
	"github.com/instctl/instctl/pkg/schema/installable"
)

// Helm executes helm installables via `helm upgrade --install` and
// `helm uninstall`. Both actions are idempotent by helm's own semantics.
type Helm struct {
	Runner Runner
}

// Apply installs or upgrades the release.
func (h *Helm) Apply(ctx context.Context, inst *installable.Installable, opts Context) error {
	if err := h.login(ctx, inst, opts); err != nil {
		return err
	}

	args := []string{"upgrade", "--install", inst.Release, chartRef(inst)}

	if !isOCI(inst.Repository) && inst.Repository != "" {
		args = append(args, "--repo", inst.Repository)
	}
	if inst.ChartVersion != "" {
		args = append(args, "--version", inst.ChartVersion)
	}
	if inst.ValuesFile != "" {
		args = append(args, "-f", resolvePath(opts.BaseDir, inst.ValuesFile))
	}
	if inst.Namespace != "" {
		args = append(args, "--namespace", inst.Namespace)
	}
	if opts.KubeContext != "" {
		args = append(args, "--kube-context", opts.KubeContext)
	}
	if opts.DryRun {
		args = append(args, "--dry-run")
	}
	if opts.EffectiveWait(inst) {
		args = append(args, "--wait")
	}
	if opts.Timeout > 0 {
		args = append(args, "--timeout", opts.Timeout.String())
	}

	return h.run(ctx, inst, Command{Binary: "helm", Args: args})
}

// Delete uninstalls the release. Already-absent releases are not an error.
func (h *Helm) Delete(ctx context.Context, inst *installable.Installable, opts Context) error {
	args := []string{"uninstall", inst.Release, "--ignore-not-found"}

	if inst.Namespace != "" {
		args = append(args, "--namespace", inst.Namespace)
	}
	if opts.KubeContext != "" {
		args = append(args, "--kube-context", opts.KubeContext)
	}
	if opts.DryRun {
		args = append(args, "--dry-run")
	}
	if opts.Timeout > 0 {
		args = append(args, "--timeout", opts.Timeout.String())
	}

	return h.run(ctx, inst, Command{Binary: "helm", Args: args})
}

// login authenticates against the chart's OCI registry when the repository is
// an oci:// reference and credentials resolved to something usable.
func (h *Helm) login(ctx context.Context, inst *installable.Installable, opts Context) error {
	if !isOCI(inst.Repository) || opts.Credentials == nil {
		return nil
	}

	host, err := registryHost(inst.Repository)
	if err != nil {
		return errors.CredentialError(
			fmt.Sprintf("cannot determine registry host from %q: %v", inst.Repository, err))
	}

	user, pass := opts.Credentials.Login()
	cmd := Command{
		Binary: "helm",
		Args:   []string{"registry", "login", host, "-u", user, "-p", pass},
		Redact: []string{pass},
	}
	return h.run(ctx, inst, cmd)
}

func (h *Helm) run(ctx context.Context, inst *installable.Installable, cmd Command) error {
	output, err := h.Runner.Run(ctx, cmd)
	if err != nil {
		return errors.ExecutionError(inst.ID, err, output)
	}
	return nil
}

func isOCI(repository string) bool {
	return strings.HasPrefix(repository, "oci://")
}

// chartRef builds the chart argument: OCI repositories embed the chart name in
// the reference, classic repositories pass the bare chart name with --repo.
func chartRef(inst *installable.Installable) string {
	if isOCI(inst.Repository) {
		return strings.TrimSuffix(inst.Repository, "/") + "/" + inst.Name
	}
	return inst.Name
}

// registryHost parses the registry host out of an oci:// repository reference.
func registryHost(repository string) (string, error) {
	ref := strings.TrimPrefix(repository, "oci://")
	repo, err := name.NewRepository(ref, name.WeakValidation)
	if err != nil {
		// Fall back to the first path segment
		if host, _, found := strings.Cut(ref, "/"); found && host != "" {
			return host, nil
		}
		return "", err
	}
	return repo.RegistryStr(), nil
}

func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
