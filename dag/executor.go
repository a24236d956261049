/*
NAME
  executor.go

DESCRIPTION
  executor.go provides topological execution of a processing graph with a
  content-addressed artifact cache and partial execution up to a target
  node.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dag

import (
	"fmt"
	"sort"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/orc/artifact"
	"github.com/ausocean/orc/stage"
)

// ExecutionError reports a structural or execution failure. Node is NoNode
// when no particular node is at fault.
type ExecutionError struct {
	Message string
	Node    NodeID
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Node == NoNode {
		return "dag execution: " + e.Message
	}
	return fmt.Sprintf("dag execution: node %d: %s", e.Node, e.Message)
}

func execErr(node NodeID, format string, args ...interface{}) *ExecutionError {
	return &ExecutionError{Message: fmt.Sprintf(format, args...), Node: node}
}

// ProgressFunc receives per-node execution progress: the node about to be
// evaluated, its 1-based position in the run, and the run's node count.
type ProgressFunc func(node NodeID, current, total int)

// Executor evaluates DAGs. It owns a content-addressed artifact cache which
// persists across runs until cleared: at most one computation happens per
// fingerprint observed, so re-running an unchanged graph performs no stage
// work at all. The executor is single-threaded; one run proceeds
// node-by-node in a deterministic topological order on the calling thread.
type Executor struct {
	cache        map[string]artifact.Artifact
	cacheEnabled bool
	progress     ProgressFunc
	log          logging.Logger
}

// NewExecutor returns an executor with an empty cache, enabled.
func NewExecutor(l logging.Logger) *Executor {
	return &Executor{cache: make(map[string]artifact.Artifact), cacheEnabled: true, log: l}
}

// SetCacheEnabled toggles use of the artifact cache.
func (e *Executor) SetCacheEnabled(enabled bool) { e.cacheEnabled = enabled }

// CacheEnabled reports whether the artifact cache is in use.
func (e *Executor) CacheEnabled() bool { return e.cacheEnabled }

// ClearCache drops every cached artifact.
func (e *Executor) ClearCache() { e.cache = make(map[string]artifact.Artifact) }

// CacheSize returns the number of cached artifacts.
func (e *Executor) CacheSize() int { return len(e.cache) }

// CacheLookup returns the cached artifact with the given fingerprint.
func (e *Executor) CacheLookup(id string) (artifact.Artifact, bool) {
	a, ok := e.cache[id]
	return a, ok
}

// SetProgressCallback installs the per-node progress receiver.
func (e *Executor) SetProgressCallback(f ProgressFunc) { e.progress = f }

// Execute evaluates the whole graph and returns the outputs of the declared
// output nodes, in declaration order.
func (e *Executor) Execute(d *DAG) ([]artifact.Artifact, error) {
	if errs := d.ValidationErrors(); len(errs) != 0 {
		return nil, execErr(NoNode, "invalid DAG: %s", errs[0])
	}
	order := topoSort(d, nil)
	outputs, err := e.run(d, order)
	if err != nil {
		return nil, err
	}
	var result []artifact.Artifact
	for _, id := range d.OutputNodes() {
		result = append(result, outputs[id]...)
	}
	return result, nil
}

// ExecuteToNode evaluates only the ancestors of target (inclusive) and
// returns the per-node outputs produced. The preview renderer uses this so
// that changing late-graph parameters does not re-execute everything.
func (e *Executor) ExecuteToNode(d *DAG, target NodeID) (map[NodeID][]artifact.Artifact, error) {
	if errs := d.ValidationErrors(); len(errs) != 0 {
		return nil, execErr(NoNode, "invalid DAG: %s", errs[0])
	}
	idx := d.NodeIndex()
	if _, ok := idx[target]; !ok {
		return nil, execErr(target, "target node not in DAG")
	}

	// Collect the ancestor set of the target.
	want := map[NodeID]bool{target: true}
	var mark func(id NodeID)
	mark = func(id NodeID) {
		for _, b := range d.Nodes()[idx[id]].Inputs {
			if !want[b.Node] {
				want[b.Node] = true
				mark(b.Node)
			}
		}
	}
	mark(target)

	order := topoSort(d, want)
	return e.run(d, order)
}

// topoSort returns the node IDs of d in topological order, restricted to
// the subset when non-nil. Ties are broken by ascending node ID so that
// runs are reproducible.
func topoSort(d *DAG, subset map[NodeID]bool) []NodeID {
	idx := d.NodeIndex()
	indeg := make(map[NodeID]int)
	dependants := make(map[NodeID][]NodeID)
	for _, n := range d.Nodes() {
		if subset != nil && !subset[n.ID] {
			continue
		}
		indeg[n.ID] += 0
		seen := make(map[NodeID]bool)
		for _, b := range n.Inputs {
			if _, ok := idx[b.Node]; !ok {
				continue
			}
			if subset != nil && !subset[b.Node] {
				continue
			}
			// A node consuming two outputs of one producer depends on
			// it once.
			if seen[b.Node] {
				continue
			}
			seen[b.Node] = true
			indeg[n.ID]++
			dependants[b.Node] = append(dependants[b.Node], n.ID)
		}
	}

	var ready []NodeID
	for id, deg := range indeg {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	var order []NodeID
	for len(ready) != 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, dep := range dependants[id] {
			indeg[dep]--
			if indeg[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}
	return order
}

// run evaluates the given nodes in order, consulting the cache before each
// stage call, and returns every node's outputs.
func (e *Executor) run(d *DAG, order []NodeID) (map[NodeID][]artifact.Artifact, error) {
	idx := d.NodeIndex()
	obs := stage.NewObservations()
	outputs := make(map[NodeID][]artifact.Artifact, len(order))

	for i, id := range order {
		n := d.Nodes()[idx[id]]
		if e.progress != nil {
			e.progress(id, i+1, len(order))
		}

		// Gather inputs: bound upstream outputs, or the DAG's seed
		// artifacts for source nodes that consume them.
		var inputs []artifact.Artifact
		if len(n.Inputs) == 0 && n.Stage.Info().Type == stage.Source {
			inputs = d.RootInputs()
		}
		for _, b := range n.Inputs {
			up := outputs[b.Node]
			if b.Output >= len(up) {
				return nil, execErr(id, "input %d of node %d not produced", b.Output, b.Node)
			}
			if up[b.Output] == nil {
				return nil, execErr(id, "nil input from node %d", b.Node)
			}
			inputs = append(inputs, up[b.Output])
		}

		outs, hit, err := e.cachedOrExecute(n, inputs, obs)
		if err != nil {
			return nil, err
		}
		if e.log != nil {
			e.log.Debug("evaluated node", "node", id, "stage", n.Stage.Info().Name, "cached", hit, "outputs", len(outs))
		}
		outputs[id] = outs
	}
	return outputs, nil
}

// cachedOrExecute returns the node's outputs from the cache when every
// expected fingerprint is present, and otherwise calls the stage and
// publishes its outputs to the cache.
func (e *Executor) cachedOrExecute(n Node, inputs []artifact.Artifact, obs *stage.Observations) ([]artifact.Artifact, bool, error) {
	info := n.Stage.Info()
	prov := artifact.Provenance{
		Stage:      info.Name,
		Version:    n.Stage.Version(),
		Parameters: n.Parameters,
		Inputs:     inputIDs(inputs),
	}

	// The expected fingerprints follow the same recipe the stage uses, so
	// a hit reproduces the outputs without calling the stage at all.
	if count := n.Stage.OutputCount(); e.cacheEnabled && count > 0 {
		outs := make([]artifact.Artifact, 0, count)
		for k := 0; k < count; k++ {
			a, ok := e.cache[prov.ArtifactID(k)]
			if !ok {
				outs = nil
				break
			}
			outs = append(outs, a)
		}
		if outs != nil {
			return outs, true, nil
		}
	}

	outs, err := n.Stage.Execute(inputs, n.Parameters, obs)
	if err != nil {
		return nil, false, execErr(n.ID, "stage %s failed: %v", info.Name, err)
	}
	if count := n.Stage.OutputCount(); count > 0 && len(outs) != count {
		return nil, false, execErr(n.ID, "stage %s produced %d outputs, declared %d", info.Name, len(outs), count)
	}
	if uint32(len(outs)) > info.MaxOutputs || len(outs) < int(info.MinOutputs) {
		return nil, false, execErr(n.ID, "stage %s produced %d outputs outside [%d, %d]",
			info.Name, len(outs), info.MinOutputs, info.MaxOutputs)
	}
	if e.cacheEnabled {
		for _, a := range outs {
			e.cache[a.ID()] = a
		}
	}
	return outs, false, nil
}

func inputIDs(inputs []artifact.Artifact) []string {
	if len(inputs) == 0 {
		return nil
	}
	ids := make([]string, len(inputs))
	for i, a := range inputs {
		ids[i] = a.ID()
	}
	return ids
}
