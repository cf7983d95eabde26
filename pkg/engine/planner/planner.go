// Package planner computes dependency-respecting execution plans.
package planner

import (
	"github.com/instctl/instctl/pkg/errors"
	"github.com/instctl/instctl/pkg/schema/installable"
)

// Plan is an ordered sequence of installables such that every dependency
// precedes its dependents.
type Plan struct {
	Nodes []*installable.Installable
}

// IsEmpty returns true if there is nothing to execute.
func (p *Plan) IsEmpty() bool {
	return len(p.Nodes) == 0
}

// IDs returns the node ids in plan order.
func (p *Plan) IDs() []string {
	ids := make([]string, len(p.Nodes))
	for i, node := range p.Nodes {
		ids[i] = node.ID
	}
	return ids
}

// ComputeExecutionOrder orders the document's installables so that every
// dependsOn predecessor precedes its dependents. Nodes become eligible in
// declaration order, and ties are broken by declaration order rather than by
// id, so the author's sequencing survives wherever the graph allows freedom.
//
// A dependsOn reference to an undeclared id or a cycle in the dependency
// relation is fatal; both are reported before any execution begins.
func ComputeExecutionOrder(doc *installable.Document) (*Plan, error) {
	index := make(map[string]int, len(doc.Installables))
	for i, inst := range doc.Installables {
		index[inst.ID] = i
	}

	// Kahn's algorithm over declaration indexes
	inDegree := make([]int, len(doc.Installables))
	dependents := make([][]int, len(doc.Installables))

	for i, inst := range doc.Installables {
		for _, dep := range inst.DependsOn {
			depIdx, ok := index[dep]
			if !ok {
				return nil, errors.UnknownComponentError(inst.ID, dep)
			}
			inDegree[i]++
			dependents[depIdx] = append(dependents[depIdx], i)
		}
	}

	done := make([]bool, len(doc.Installables))
	plan := &Plan{}

	for len(plan.Nodes) < len(doc.Installables) {
		next := -1
		for i := range doc.Installables {
			if !done[i] && inDegree[i] == 0 {
				next = i
				break
			}
		}
		if next == -1 {
			// Whatever remains is on (or downstream of) a cycle
			var stuck []string
			for i, inst := range doc.Installables {
				if !done[i] {
					stuck = append(stuck, inst.ID)
				}
			}
			return nil, errors.DependencyCycleError(stuck)
		}

		done[next] = true
		plan.Nodes = append(plan.Nodes, doc.Installables[next])
		for _, dep := range dependents[next] {
			inDegree[dep]--
		}
	}

	return plan, nil
}
