/*
NAME
  dag.go

DESCRIPTION
  dag.go provides the static processing graph model and its validation.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Alan Noble <alan@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dag provides the static directed acyclic processing graph of
// stage nodes, its validation, and the executor that evaluates it with a
// content-addressed artifact cache.
package dag

import (
	"fmt"

	"github.com/ausocean/orc/artifact"
	"github.com/ausocean/orc/param"
	"github.com/ausocean/orc/stage"
)

// NodeID identifies a node within a DAG. IDs are signed so that the
// reserved NoNode sentinel is representable; valid node IDs are
// non-negative.
type NodeID int64

// NoNode is the reserved placeholder for "no node", used by the preview
// API when a DAG has nothing to show.
const NoNode NodeID = -1

// Binding references one output of an upstream node.
type Binding struct {
	Node   NodeID
	Output int
}

// Node couples a stage instance with its parameter values and input
// bindings.
type Node struct {
	ID         NodeID
	Stage      stage.Stage
	Parameters param.Map
	Inputs     []Binding
}

// DAG is a complete processing graph. It is declarative and static: nodes
// are added during construction, the graph is validated, and it is then
// shared read-only with the executor and the preview renderer. A DAG is not
// copied once shared.
type DAG struct {
	nodes      []Node
	rootInputs []artifact.Artifact
	outputs    []NodeID
}

// New returns an empty DAG.
func New() *DAG { return &DAG{} }

// AddNode appends a node to the graph.
func (d *DAG) AddNode(n Node) { d.nodes = append(d.nodes, n) }

// SetRootInputs installs the seed artifacts handed to source nodes that
// consume external inputs.
func (d *DAG) SetRootInputs(in []artifact.Artifact) { d.rootInputs = in }

// SetOutputNodes declares which nodes' outputs Execute returns.
func (d *DAG) SetOutputNodes(ids []NodeID) { d.outputs = ids }

// Nodes returns the graph's nodes in insertion order.
func (d *DAG) Nodes() []Node { return d.nodes }

// RootInputs returns the seed artifacts.
func (d *DAG) RootInputs() []artifact.Artifact { return d.rootInputs }

// OutputNodes returns the declared output nodes.
func (d *DAG) OutputNodes() []NodeID { return d.outputs }

// NodeIndex returns a map from node ID to position in Nodes.
func (d *DAG) NodeIndex() map[NodeID]int {
	idx := make(map[NodeID]int, len(d.nodes))
	for i, n := range d.nodes {
		idx[n.ID] = i
	}
	return idx
}

// Validate reports whether the graph is well formed. Use ValidationErrors
// for the diagnostics.
func (d *DAG) Validate() bool { return len(d.ValidationErrors()) == 0 }

// ValidationErrors checks the graph and returns a description of every
// problem found: duplicate node IDs, dangling input references, arity
// violations, cycles and unknown output nodes.
func (d *DAG) ValidationErrors() []string {
	var errs []string

	idx := make(map[NodeID]int, len(d.nodes))
	for i, n := range d.nodes {
		if n.ID < 0 {
			errs = append(errs, fmt.Sprintf("node %d: invalid id", n.ID))
		}
		if _, dup := idx[n.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate node id: %d", n.ID))
			continue
		}
		idx[n.ID] = i
	}

	for _, n := range d.nodes {
		if n.Stage == nil {
			errs = append(errs, fmt.Sprintf("node %d: no stage", n.ID))
			continue
		}
		info := n.Stage.Info()
		if len(n.Inputs) < int(info.MinInputs) || uint32(len(n.Inputs)) > info.MaxInputs {
			errs = append(errs, fmt.Sprintf("node %d: %d inputs outside [%d, %d] for stage %s",
				n.ID, len(n.Inputs), info.MinInputs, info.MaxInputs, info.Name))
		}
		for _, b := range n.Inputs {
			j, ok := idx[b.Node]
			if !ok {
				errs = append(errs, fmt.Sprintf("node %d: input references unknown node %d", n.ID, b.Node))
				continue
			}
			src := d.nodes[j].Stage
			if src == nil {
				continue
			}
			// Fixed fan-out stages bound the output index directly;
			// variable fan-out stages bound it by their declared maximum.
			if c := src.OutputCount(); c > 0 {
				if b.Output < 0 || b.Output >= c {
					errs = append(errs, fmt.Sprintf("node %d: output index %d out of range for node %d (%d outputs)",
						n.ID, b.Output, b.Node, c))
				}
			} else if b.Output < 0 || uint32(b.Output) >= src.Info().MaxOutputs {
				errs = append(errs, fmt.Sprintf("node %d: output index %d exceeds stage %s max outputs",
					n.ID, b.Output, src.Info().Name))
			}
		}
	}

	if d.hasCycle(idx) {
		errs = append(errs, "graph contains a cycle")
	}

	for _, id := range d.outputs {
		if _, ok := idx[id]; !ok {
			errs = append(errs, fmt.Sprintf("unknown output node: %d", id))
		}
	}
	return errs
}

// hasCycle runs a three-colour depth-first search over the binding graph;
// any back edge is a cycle.
func (d *DAG) hasCycle(idx map[NodeID]int) bool {
	const (
		white = iota // Unvisited.
		grey         // On the current path.
		black        // Done.
	)
	colour := make([]int, len(d.nodes))
	var visit func(i int) bool
	visit = func(i int) bool {
		colour[i] = grey
		for _, b := range d.nodes[i].Inputs {
			j, ok := idx[b.Node]
			if !ok {
				continue
			}
			switch colour[j] {
			case grey:
				return true
			case white:
				if visit(j) {
					return true
				}
			}
		}
		colour[i] = black
		return false
	}
	for i := range d.nodes {
		if colour[i] == white && visit(i) {
			return true
		}
	}
	return false
}
