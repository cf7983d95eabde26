package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instctl/instctl/pkg/errors"
	"github.com/instctl/instctl/pkg/schema/installable"
)

func doc(insts ...*installable.Installable) *installable.Document {
	return &installable.Document{Installables: insts}
}

func task(id string, deps ...string) *installable.Installable {
	return &installable.Installable{
		ID:        id,
		Type:      installable.TypeTask,
		Command:   "./noop.sh",
		DependsOn: installable.StringList(deps),
	}
}

func TestComputeExecutionOrder_DeclarationOrderWithoutDeps(t *testing.T) {
	plan, err := ComputeExecutionOrder(doc(task("a"), task("b"), task("c")))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, plan.IDs())
}

func TestComputeExecutionOrder_ChainOverridesDeclaration(t *testing.T) {
	// Declared out of order; edges force istio-base first
	plan, err := ComputeExecutionOrder(doc(
		task("kagenti", "cert-manager"),
		task("cert-manager", "istio-base"),
		task("istio-base"),
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"istio-base", "cert-manager", "kagenti"}, plan.IDs())
}

func TestComputeExecutionOrder_TiesBrokenByDeclarationOrder(t *testing.T) {
	// z and m are both eligible once root is done; declaration order, not id
	// sort, decides who goes first
	plan, err := ComputeExecutionOrder(doc(
		task("root"),
		task("z", "root"),
		task("m", "root"),
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "z", "m"}, plan.IDs())
}

func TestComputeExecutionOrder_Diamond(t *testing.T) {
	plan, err := ComputeExecutionOrder(doc(
		task("top"),
		task("left", "top"),
		task("right", "top"),
		task("bottom", "left", "right"),
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"top", "left", "right", "bottom"}, plan.IDs())
}

func TestComputeExecutionOrder_UnknownComponentID(t *testing.T) {
	_, err := ComputeExecutionOrder(doc(task("a", "ghost")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownComponent))
	assert.Contains(t, err.Error(), "ghost")
}

func TestComputeExecutionOrder_ThreeNodeCycle(t *testing.T) {
	_, err := ComputeExecutionOrder(doc(
		task("a", "c"),
		task("b", "a"),
		task("c", "b"),
	))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeDependencyCycle))
}

func TestComputeExecutionOrder_SelfReference(t *testing.T) {
	_, err := ComputeExecutionOrder(doc(task("a", "a")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeDependencyCycle))
}

func TestComputeExecutionOrder_Empty(t *testing.T) {
	plan, err := ComputeExecutionOrder(doc())
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
}
