// Package installable defines the installables document model and its loader.
package installable

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Type identifies the kind of an installable. The set is closed; the validator
// rejects anything else.
type Type string

const (
	TypeHelm         Type = "helm"
	TypeKubectlApply Type = "kubectl-apply"
	TypeKubectlLabel Type = "kubectl-label"
	TypeTask         Type = "task"
)

// StringList accepts either a single YAML scalar or a sequence of scalars.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var single string
		if err := node.Decode(&single); err != nil {
			return err
		}
		*s = StringList{single}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = StringList(list)
		return nil
	default:
		return fmt.Errorf("expected string or list of strings, got %s", node.Tag)
	}
}

// RepoCredentials configures registry authentication for OCI chart repositories.
// Either literal values or dotted paths into the values tree may be given.
type RepoCredentials struct {
	Username     string `yaml:"username,omitempty"`
	Password     string `yaml:"password,omitempty"`
	Token        string `yaml:"token,omitempty"`
	UsernamePath string `yaml:"usernamePath,omitempty"`
	PasswordPath string `yaml:"passwordPath,omitempty"`
	TokenPath    string `yaml:"tokenPath,omitempty"`
}

// Installable is a single declarative deployment unit.
type Installable struct {
	ID        string     `yaml:"id"`
	Type      Type       `yaml:"type"`
	DependsOn StringList `yaml:"dependsOn,omitempty"`
	Condition string     `yaml:"condition,omitempty"`

	// Wait overrides the command-level wait default when set.
	Wait *bool `yaml:"wait,omitempty"`

	// Helm fields
	Release         string           `yaml:"release,omitempty"`
	Name            string           `yaml:"name,omitempty"`
	Repository      string           `yaml:"repository,omitempty"`
	ChartVersion    string           `yaml:"chartVersion,omitempty"`
	ValuesFile      string           `yaml:"valuesFile,omitempty"`
	RepoCredentials *RepoCredentials `yaml:"repoCredentials,omitempty"`

	// Shared by helm (release namespace) and kubectl-label (target namespace,
	// optionally a dotted path into the values tree).
	Namespace string `yaml:"namespace,omitempty"`

	// kubectl-apply fields
	URL             string `yaml:"url,omitempty"`
	InjectNamespace bool   `yaml:"injectNamespace,omitempty"`

	// kubectl-label fields
	Labels   map[string]string `yaml:"labels,omitempty"`
	Override *bool             `yaml:"override,omitempty"`

	// task fields
	Command   string   `yaml:"command,omitempty"`
	ApplyArgs []string `yaml:"applyArgs,omitempty"`

	// Raw holds the entry exactly as authored, before any substitution.
	Raw map[string]interface{} `yaml:"-"`
}

// OverrideLabels reports whether label application should pass --overwrite.
// Defaults to true when the field is absent.
func (i *Installable) OverrideLabels() bool {
	return i.Override == nil || *i.Override
}

// Description returns a short human-readable summary for progress reporting.
func (i *Installable) Description() string {
	switch i.Type {
	case TypeHelm:
		return fmt.Sprintf("helm release %s (%s)", i.Release, i.Name)
	case TypeKubectlApply:
		return fmt.Sprintf("apply manifest %s", i.URL)
	case TypeKubectlLabel:
		return fmt.Sprintf("label namespace %s", i.Namespace)
	case TypeTask:
		return fmt.Sprintf("run %s", i.Command)
	default:
		return string(i.Type)
	}
}

// Document is a parsed installables document.
type Document struct {
	Installables []*Installable `yaml:"installables"`

	// BaseDir is the directory containing the document. Relative manifest and
	// task paths resolve against it.
	BaseDir string `yaml:"-"`
}

// Get returns the installable with the given id, or nil.
func (d *Document) Get(id string) *Installable {
	for _, inst := range d.Installables {
		if inst.ID == id {
			return inst
		}
	}
	return nil
}
