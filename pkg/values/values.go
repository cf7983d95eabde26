// Package values provides the configuration tree consulted for conditions,
// namespace resolution, and credential lookups.
package values

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/instctl/instctl/pkg/errors"
)

// Tree is an arbitrary nested mapping loaded from a values document.
type Tree map[string]interface{}

// Load reads a YAML/JSON values document from the given path.
func Load(path string) (Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ParseError(path, err)
	}
	return LoadBytes(data, path)
}

// LoadBytes parses a values document. The source path is only used in errors.
func LoadBytes(data []byte, source string) (Tree, error) {
	var tree Tree
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, errors.ParseError(source, err)
	}
	if tree == nil {
		tree = make(Tree)
	}
	return tree, nil
}

// Lookup walks the tree along a dotted path like "registries.ghcr.username".
// The second return is false when any intermediate key is missing or a
// non-mapping value is reached before the path is exhausted.
func Lookup(tree Tree, path string) (interface{}, bool) {
	if path == "" {
		return nil, false
	}

	var current interface{} = map[string]interface{}(tree)
	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// LookupString resolves a dotted path to a scalar string. Non-string scalars
// are formatted; mappings and sequences are rejected.
func LookupString(tree Tree, path string) (string, error) {
	value, ok := Lookup(tree, path)
	if !ok {
		return "", errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("value path %q not found", path))
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case bool, int, int64, float64:
		return fmt.Sprintf("%v", v), nil
	default:
		return "", errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("value path %q does not resolve to a scalar", path))
	}
}

// Truthy reports whether a leaf value counts as "condition met".
func Truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		switch strings.ToLower(v) {
		case "", "false", "no", "0", "off":
			return false
		}
		return true
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}

// EvaluateCondition resolves a dotted-path condition against the tree. An empty
// condition always proceeds; a missing path or falsy leaf gates the node off.
func EvaluateCondition(tree Tree, condition string) bool {
	if condition == "" {
		return true
	}
	value, ok := Lookup(tree, condition)
	if !ok {
		return false
	}
	return Truthy(value)
}
