package values

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() Tree {
	return Tree{
		"team1": map[string]interface{}{
			"enabled":   true,
			"namespace": "team1-ns",
		},
		"team2": map[string]interface{}{
			"enabled": false,
		},
		"registries": map[string]interface{}{
			"ghcr": map[string]interface{}{
				"username": "alice",
				"password": "s3cret",
			},
		},
		"replicas": 3,
	}
}

func TestLookup(t *testing.T) {
	tree := testTree()

	val, ok := Lookup(tree, "team1.enabled")
	require.True(t, ok)
	assert.Equal(t, true, val)

	val, ok = Lookup(tree, "registries.ghcr.username")
	require.True(t, ok)
	assert.Equal(t, "alice", val)

	_, ok = Lookup(tree, "team3.enabled")
	assert.False(t, ok)

	_, ok = Lookup(tree, "team1.enabled.deeper")
	assert.False(t, ok)

	_, ok = Lookup(tree, "")
	assert.False(t, ok)
}

func TestLookupString(t *testing.T) {
	tree := testTree()

	s, err := LookupString(tree, "team1.namespace")
	require.NoError(t, err)
	assert.Equal(t, "team1-ns", s)

	// Non-string scalars are formatted
	s, err = LookupString(tree, "replicas")
	require.NoError(t, err)
	assert.Equal(t, "3", s)

	_, err = LookupString(tree, "missing.path")
	assert.Error(t, err)

	_, err = LookupString(tree, "registries.ghcr")
	assert.Error(t, err)
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected bool
	}{
		{"nil", nil, false},
		{"true", true, true},
		{"false", false, false},
		{"empty string", "", false},
		{"false string", "false", false},
		{"no string", "no", false},
		{"zero string", "0", false},
		{"nonempty string", "yes", true},
		{"zero int", 0, false},
		{"nonzero int", 2, true},
		{"zero float", 0.0, false},
		{"map", map[string]interface{}{"a": 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truthy(tt.value))
		})
	}
}

func TestEvaluateCondition(t *testing.T) {
	tree := testTree()

	assert.True(t, EvaluateCondition(tree, ""))
	assert.True(t, EvaluateCondition(tree, "team1.enabled"))
	assert.False(t, EvaluateCondition(tree, "team2.enabled"))
	assert.False(t, EvaluateCondition(tree, "team3.enabled"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "values.yaml")
	err := os.WriteFile(path, []byte("team1:\n  enabled: true\n"), 0644)
	require.NoError(t, err)

	tree, err := Load(path)
	require.NoError(t, err)
	assert.True(t, EvaluateCondition(tree, "team1.enabled"))
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "values.yaml")
	err := os.WriteFile(path, []byte(": not yaml ["), 0644)
	require.NoError(t, err)

	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "values.yaml"))
	assert.Error(t, err)
}
