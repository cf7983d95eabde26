package executor

import (
	"bytes"
	"context"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/instctl/instctl/pkg/errors"
	"github.com/instctl/instctl/pkg/schema/installable"
)

// KubectlApply pipes a manifest to `kubectl apply -f -`. Relative manifest
// paths resolve against the installables document's directory; remote URLs are
// handed to kubectl directly.
type KubectlApply struct {
	Runner Runner
}

// Apply applies the manifest.
func (k *KubectlApply) Apply(ctx context.Context, inst *installable.Installable, opts Context) error {
	return k.run(ctx, inst, opts, []string{"apply"})
}

// Delete deletes the manifest's resources. Already-deleted resources are not
// an error.
func (k *KubectlApply) Delete(ctx context.Context, inst *installable.Installable, opts Context) error {
	return k.run(ctx, inst, opts, []string{"delete", "--ignore-not-found"})
}

func (k *KubectlApply) run(ctx context.Context, inst *installable.Installable, opts Context, verb []string) error {
	args := verb
	var stdin *bytes.Reader

	if isRemoteURL(inst.URL) {
		args = append(args, "-f", inst.URL)
	} else {
		manifest, err := os.ReadFile(resolvePath(opts.BaseDir, inst.URL))
		if err != nil {
			return errors.ParseError(inst.URL, err)
		}
		if inst.InjectNamespace && inst.Namespace != "" {
			manifest, err = injectNamespace(manifest, inst.Namespace)
			if err != nil {
				return errors.ParseError(inst.URL, err)
			}
		}
		args = append(args, "-f", "-")
		stdin = bytes.NewReader(manifest)
	}

	if opts.KubeContext != "" {
		args = append(args, "--context", opts.KubeContext)
	}
	if opts.DryRun {
		args = append(args, "--dry-run=client")
	}

	cmd := Command{Binary: "kubectl", Args: args}
	if stdin != nil {
		cmd.Stdin = stdin
	}

	output, err := k.Runner.Run(ctx, cmd)
	if err != nil {
		return errors.ExecutionError(inst.ID, err, output)
	}
	return nil
}

func isRemoteURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// injectNamespace sets metadata.namespace on every document in the manifest
// that does not already carry one. When every document already declares a
// namespace the manifest is returned byte-for-byte unchanged.
func injectNamespace(manifest []byte, namespace string) ([]byte, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(manifest))

	var docs []map[string]interface{}
	injected := false
	for {
		var doc map[string]interface{}
		if err := decoder.Decode(&doc); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if doc == nil {
			continue
		}

		metadata, _ := doc["metadata"].(map[string]interface{})
		if metadata == nil {
			metadata = make(map[string]interface{})
			doc["metadata"] = metadata
		}
		if _, ok := metadata["namespace"]; !ok {
			metadata["namespace"] = namespace
			injected = true
		}
		docs = append(docs, doc)
	}

	if !injected {
		return manifest, nil
	}

	var out bytes.Buffer
	encoder := yaml.NewEncoder(&out)
	encoder.SetIndent(2)
	for _, doc := range docs {
		if err := encoder.Encode(doc); err != nil {
			return nil, err
		}
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// KubectlLabel mutates labels on a namespace.
type KubectlLabel struct {
	Runner Runner
}

// Apply sets the labels, overwriting existing values unless override is false.
func (k *KubectlLabel) Apply(ctx context.Context, inst *installable.Installable, opts Context) error {
	args := []string{"label", "namespace", inst.Namespace}
	args = append(args, labelArgs(inst.Labels, false)...)

	if inst.OverrideLabels() {
		args = append(args, "--overwrite")
	}

	return k.run(ctx, inst, opts, args)
}

// Delete removes the labels. Removal is unconditional by kubectl convention,
// so --overwrite is never passed.
func (k *KubectlLabel) Delete(ctx context.Context, inst *installable.Installable, opts Context) error {
	args := []string{"label", "namespace", inst.Namespace}
	args = append(args, labelArgs(inst.Labels, true)...)

	return k.run(ctx, inst, opts, args)
}

func (k *KubectlLabel) run(ctx context.Context, inst *installable.Installable, opts Context, args []string) error {
	if opts.KubeContext != "" {
		args = append(args, "--context", opts.KubeContext)
	}
	if opts.DryRun {
		args = append(args, "--dry-run=client")
	}

	output, err := k.Runner.Run(ctx, Command{Binary: "kubectl", Args: args})
	if err != nil {
		return errors.ExecutionError(inst.ID, err, output)
	}
	return nil
}

// labelArgs renders labels as k=v pairs (or trailing-dash removal form),
// sorted by key for deterministic commands.
func labelArgs(labels map[string]string, remove bool) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]string, 0, len(keys))
	for _, k := range keys {
		if remove {
			args = append(args, k+"-")
		} else {
			args = append(args, k+"="+labels[k])
		}
	}
	return args
}
