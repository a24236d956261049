/*
NAME
  dag_test.go

DESCRIPTION
  dag_test.go tests graph validation and the executor: topological
  execution, caching, determinism and partial execution.

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
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ausocean/orc/artifact"
	"github.com/ausocean/orc/param"
	"github.com/ausocean/orc/stage"
	"github.com/ausocean/orc/video"
)

// testSource produces a small synthetic representation and counts its
// execute calls.
type testSource struct {
	fields int
	calls  int
}

func (s *testSource) Version() string { return "1.0" }
func (s *testSource) Info() stage.NodeTypeInfo {
	return stage.NodeTypeInfo{Type: stage.Source, Name: "test_source", MinOutputs: 1, MaxOutputs: 1, Compat: stage.CompatAll}
}
func (s *testSource) RequiredInputCount() int { return 0 }
func (s *testSource) OutputCount() int        { return 1 }
func (s *testSource) Execute(in []artifact.Artifact, p param.Map, obs *stage.Observations) ([]artifact.Artifact, error) {
	s.calls++
	fields := make([]video.FieldData, s.fields)
	for i := range fields {
		samples := make([]uint16, 4*2)
		for j := range samples {
			samples[j] = uint16(0x4000 + i)
		}
		first := i%2 == 0
		fields[i] = video.FieldData{
			Descriptor: video.FieldDescriptor{Width: 4, Height: 2},
			Samples:    samples,
			Parity:     &video.ParityHint{IsFirstField: first},
		}
	}
	params := &video.Parameters{Black16bIRE: 0, White16bIRE: 0xffff}
	prov := artifact.Provenance{Stage: "test_source", Version: s.Version(), Parameters: p}
	return []artifact.Artifact{video.NewMemoryRepresentation(video.TypeName, prov, 0, fields, params)}, nil
}

// testPass is a counting pass-through transform.
type testPass struct {
	calls int
}

func (s *testPass) Version() string { return "1.0" }
func (s *testPass) Info() stage.NodeTypeInfo {
	return stage.NodeTypeInfo{Type: stage.Transform, Name: "test_pass", MinInputs: 1, MaxInputs: 1, MinOutputs: 1, MaxOutputs: 1, Compat: stage.CompatAll}
}
func (s *testPass) RequiredInputCount() int { return 1 }
func (s *testPass) OutputCount() int        { return 1 }
func (s *testPass) Execute(in []artifact.Artifact, p param.Map, obs *stage.Observations) ([]artifact.Artifact, error) {
	s.calls++
	src := in[0].(video.Representation)
	prov := artifact.Provenance{Stage: "test_pass", Version: s.Version(), Parameters: p, Inputs: []string{src.ID()}}
	w := video.NewWrapper(prov, 0, src)
	return []artifact.Artifact{&w}, nil
}

func chain(nFields int) (*DAG, *testSource, *testPass) {
	src := &testSource{fields: nFields}
	pass := &testPass{}
	d := New()
	d.AddNode(Node{ID: 0, Stage: src, Parameters: param.Map{"n": param.NewInt32(int32(nFields))}})
	d.AddNode(Node{ID: 1, Stage: pass, Inputs: []Binding{{Node: 0, Output: 0}}})
	d.SetOutputNodes([]NodeID{1})
	return d, src, pass
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name  string
		build func() *DAG
		valid bool
	}{
		{
			name: "valid chain",
			build: func() *DAG {
				d, _, _ := chain(2)
				return d
			},
			valid: true,
		},
		{
			name: "duplicate id",
			build: func() *DAG {
				d := New()
				d.AddNode(Node{ID: 0, Stage: &testSource{fields: 1}})
				d.AddNode(Node{ID: 0, Stage: &testSource{fields: 1}})
				return d
			},
		},
		{
			name: "dangling input",
			build: func() *DAG {
				d := New()
				d.AddNode(Node{ID: 0, Stage: &testPass{}, Inputs: []Binding{{Node: 9, Output: 0}}})
				return d
			},
		},
		{
			name: "arity violation",
			build: func() *DAG {
				d := New()
				d.AddNode(Node{ID: 0, Stage: &testSource{fields: 1}})
				d.AddNode(Node{ID: 1, Stage: &testSource{fields: 1}, Inputs: []Binding{{Node: 0, Output: 0}}})
				return d
			},
		},
		{
			name: "output index out of range",
			build: func() *DAG {
				d := New()
				d.AddNode(Node{ID: 0, Stage: &testSource{fields: 1}})
				d.AddNode(Node{ID: 1, Stage: &testPass{}, Inputs: []Binding{{Node: 0, Output: 3}}})
				return d
			},
		},
		{
			name: "cycle",
			build: func() *DAG {
				d := New()
				d.AddNode(Node{ID: 0, Stage: &testPass{}, Inputs: []Binding{{Node: 1, Output: 0}}})
				d.AddNode(Node{ID: 1, Stage: &testPass{}, Inputs: []Binding{{Node: 0, Output: 0}}})
				return d
			},
		},
		{
			name: "unknown output node",
			build: func() *DAG {
				d, _, _ := chain(2)
				d.SetOutputNodes([]NodeID{7})
				return d
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.build()
			if got := d.Validate(); got != tt.valid {
				t.Errorf("Validate() = %v, want %v; errors: %v", got, tt.valid, d.ValidationErrors())
			}
			if !tt.valid && len(d.ValidationErrors()) == 0 {
				t.Error("invalid DAG reported no errors")
			}
		})
	}
}

func TestExecute(t *testing.T) {
	d, src, pass := chain(4)
	exec := NewExecutor((*logging.TestLogger)(t))

	outs, err := exec.Execute(d)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	rep, ok := outs[0].(video.Representation)
	require.True(t, ok)
	require.EqualValues(t, 4, rep.FieldCount())
	require.Equal(t, 1, src.calls)
	require.Equal(t, 1, pass.calls)
	require.Equal(t, 2, exec.CacheSize())

	// Every produced artifact is retrievable by its own fingerprint.
	got, ok := exec.CacheLookup(outs[0].ID())
	require.True(t, ok)
	require.Same(t, outs[0], got)
}

func TestExecuteCaching(t *testing.T) {
	d, src, pass := chain(4)
	exec := NewExecutor((*logging.TestLogger)(t))

	first, err := exec.Execute(d)
	require.NoError(t, err)
	require.Equal(t, 1, src.calls)
	require.Equal(t, 1, pass.calls)

	// A second run over a warm cache calls no stage at all and yields the
	// same fingerprints.
	second, err := exec.Execute(d)
	require.NoError(t, err)
	require.Equal(t, 1, src.calls)
	require.Equal(t, 1, pass.calls)
	require.Equal(t, first[0].ID(), second[0].ID())

	// An identical graph built from scratch is a pure cache hit too.
	d2, src2, pass2 := chain(4)
	third, err := exec.Execute(d2)
	require.NoError(t, err)
	require.Zero(t, src2.calls)
	require.Zero(t, pass2.calls)
	require.Equal(t, first[0].ID(), third[0].ID())

	// With the cache disabled every stage runs again.
	exec.SetCacheEnabled(false)
	_, err = exec.Execute(d)
	require.NoError(t, err)
	require.Equal(t, 2, src.calls)
	require.Equal(t, 2, pass.calls)

	exec.SetCacheEnabled(true)
	exec.ClearCache()
	require.Zero(t, exec.CacheSize())
	_, err = exec.Execute(d)
	require.NoError(t, err)
	require.Equal(t, 3, src.calls)
}

func TestExecuteDeterminism(t *testing.T) {
	// Two cold-cache executors over identically built graphs yield
	// identical fingerprints for every node.
	d1, _, _ := chain(4)
	d2, _, _ := chain(4)

	e1 := NewExecutor((*logging.TestLogger)(t))
	e2 := NewExecutor((*logging.TestLogger)(t))

	o1, err := e1.ExecuteToNode(d1, 1)
	require.NoError(t, err)
	o2, err := e2.ExecuteToNode(d2, 1)
	require.NoError(t, err)

	for _, id := range []NodeID{0, 1} {
		require.Equal(t, len(o1[id]), len(o2[id]))
		for i := range o1[id] {
			require.Equal(t, o1[id][i].ID(), o2[id][i].ID(), "node %d output %d", id, i)
		}
	}
}

func TestExecuteToNode(t *testing.T) {
	// source -> pass -> pass; executing to the middle node must not run
	// the tail.
	src := &testSource{fields: 2}
	mid := &testPass{}
	tail := &testPass{}
	d := New()
	d.AddNode(Node{ID: 0, Stage: src})
	d.AddNode(Node{ID: 1, Stage: mid, Inputs: []Binding{{Node: 0, Output: 0}}})
	d.AddNode(Node{ID: 2, Stage: tail, Inputs: []Binding{{Node: 1, Output: 0}}})
	d.SetOutputNodes([]NodeID{2})

	exec := NewExecutor((*logging.TestLogger)(t))
	outs, err := exec.ExecuteToNode(d, 1)
	require.NoError(t, err)
	require.Len(t, outs[1], 1)
	require.Equal(t, 1, src.calls)
	require.Equal(t, 1, mid.calls)
	require.Zero(t, tail.calls)

	_, err = exec.ExecuteToNode(d, 9)
	require.Error(t, err)
	var ee *ExecutionError
	require.ErrorAs(t, err, &ee)
	require.EqualValues(t, 9, ee.Node)
}

func TestExecuteProgress(t *testing.T) {
	d, _, _ := chain(2)
	exec := NewExecutor((*logging.TestLogger)(t))

	type report struct {
		node           NodeID
		current, total int
	}
	var reports []report
	exec.SetProgressCallback(func(node NodeID, current, total int) {
		reports = append(reports, report{node, current, total})
	})

	_, err := exec.Execute(d)
	require.NoError(t, err)
	require.Equal(t, []report{{0, 1, 2}, {1, 2, 2}}, reports)
}

func TestExecuteInvalid(t *testing.T) {
	d := New()
	d.AddNode(Node{ID: 0, Stage: &testPass{}, Inputs: []Binding{{Node: 9, Output: 0}}})
	exec := NewExecutor((*logging.TestLogger)(t))
	_, err := exec.Execute(d)
	require.Error(t, err)
}
