/*
NAME
  renderer_test.go

DESCRIPTION
  renderer_test.go tests preview rendering: field and frame weaving, IRE
  scaling, the dropout overlay, the packed-RGB fast path and item labels.

AUTHORS
  Trek Hopton <trek@ausocean.org>
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package preview

import (
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ausocean/orc/artifact"
	"github.com/ausocean/orc/dag"
	"github.com/ausocean/orc/param"
	"github.com/ausocean/orc/stage"
	"github.com/ausocean/orc/video"
)

// testSource hands out a fixed representation. The tag keeps fingerprints
// of differently shaped sources apart.
type testSource struct {
	tag      string
	typeName string
	fields   []video.FieldData
	params   *video.Parameters
}

func (s *testSource) Version() string { return "1.0" }
func (s *testSource) Info() stage.NodeTypeInfo {
	return stage.NodeTypeInfo{Type: stage.Source, Name: "test_source", MinOutputs: 1, MaxOutputs: 1, Compat: stage.CompatAll}
}
func (s *testSource) RequiredInputCount() int { return 0 }
func (s *testSource) OutputCount() int        { return 1 }
func (s *testSource) Execute(in []artifact.Artifact, p param.Map, obs *stage.Observations) ([]artifact.Artifact, error) {
	prov := artifact.Provenance{
		Stage:      "test_source",
		Version:    s.Version(),
		Parameters: param.Map{"tag": param.NewString(s.tag)},
	}
	return []artifact.Artifact{video.NewMemoryRepresentation(s.typeName, prov, 0, s.fields, s.params)}, nil
}

// constantFields returns n fields of the given heights, each filled with
// i*0x1000, alternating parity starting with firstFirst.
func constantFields(n int, width int, heights []int, firstFirst bool) []video.FieldData {
	fields := make([]video.FieldData, n)
	for i := range fields {
		h := heights[i%len(heights)]
		samples := make([]uint16, width*h)
		for j := range samples {
			samples[j] = uint16(i * 0x1000)
		}
		first := i%2 == 0 == firstFirst
		fields[i] = video.FieldData{
			Descriptor: video.FieldDescriptor{Width: width, Height: h},
			Samples:    samples,
			Parity:     &video.ParityHint{IsFirstField: first},
		}
	}
	return fields
}

func makeRenderer(t *testing.T, src *testSource) (*Renderer, dag.NodeID) {
	t.Helper()
	d := dag.New()
	d.AddNode(dag.Node{ID: 0, Stage: src})
	d.SetOutputNodes([]dag.NodeID{0})
	require.True(t, d.Validate(), "test DAG invalid: %v", d.ValidationErrors())
	exec := dag.NewExecutor((*logging.TestLogger)(t))
	return NewRenderer(d, exec, (*logging.TestLogger)(t)), 0
}

// grey returns the expected 8-bit display value of a 16-bit sample under
// full-range IRE scaling.
func grey(s uint16) uint8 { return uint8(int32(s) * 255 / 0xffff) }

func fullRange() *video.Parameters {
	return &video.Parameters{System: video.PAL, Black16bIRE: 0, White16bIRE: 0xffff}
}

func TestRenderFieldScaling(t *testing.T) {
	src := &testSource{tag: "scale", typeName: video.TypeName, fields: constantFields(2, 4, []int{2}, true), params: fullRange()}
	r, node := makeRenderer(t, src)

	res := r.RenderOutput(node, Field, 1, "", stage.Random)
	require.True(t, res.Success, res.Err)
	require.True(t, res.Image.Valid())
	require.Equal(t, 4, res.Image.Width)
	require.Equal(t, 2, res.Image.Height)

	want := grey(0x1000)
	for i := 0; i < len(res.Image.RGB); i++ {
		require.Equal(t, want, res.Image.RGB[i], "byte %d", i)
	}
}

func TestRenderFrameWeave(t *testing.T) {
	src := &testSource{tag: "weave", typeName: video.TypeName, fields: constantFields(4, 4, []int{2}, true), params: fullRange()}
	r, node := makeRenderer(t, src)

	res := r.RenderOutput(node, Frame, 0, "", stage.Random)
	require.True(t, res.Success, res.Err)
	require.Equal(t, 4, res.Image.Height)

	rowValue := func(img video.PreviewImage, y int) uint8 { return img.RGB[y*img.Width*3] }

	// Natural order: field 0 on even rows, field 1 on odd rows.
	require.Equal(t, grey(0), rowValue(res.Image, 0))
	require.Equal(t, grey(0x1000), rowValue(res.Image, 1))
	require.Equal(t, grey(0), rowValue(res.Image, 2))
	require.Equal(t, grey(0x1000), rowValue(res.Image, 3))

	// Reversed order swaps the rows.
	rev := r.RenderOutput(node, FrameReversed, 0, "", stage.Random)
	require.True(t, rev.Success, rev.Err)
	require.Equal(t, grey(0x1000), rowValue(rev.Image, 0))
	require.Equal(t, grey(0), rowValue(rev.Image, 1))

	// Frame 1 weaves fields 2 and 3.
	next := r.RenderOutput(node, Frame, 1, "", stage.Random)
	require.True(t, next.Success, next.Err)
	require.Equal(t, grey(0x2000), rowValue(next.Image, 0))
	require.Equal(t, grey(0x3000), rowValue(next.Image, 1))
}

func TestRenderFrameUnequalHeights(t *testing.T) {
	// PAL-like alternation: first field 3 lines, second field 2. The
	// longer field's extra line lands on the bottom image row.
	src := &testSource{tag: "unequal", typeName: video.TypeName, fields: constantFields(2, 4, []int{3, 2}, true), params: fullRange()}
	r, node := makeRenderer(t, src)

	res := r.RenderOutput(node, Frame, 0, "", stage.Random)
	require.True(t, res.Success, res.Err)
	require.Equal(t, 5, res.Image.Height)

	rowValue := func(y int) uint8 { return res.Image.RGB[y*res.Image.Width*3] }
	require.Equal(t, grey(0), rowValue(0))
	require.Equal(t, grey(0x1000), rowValue(1))
	require.Equal(t, grey(0), rowValue(2))
	require.Equal(t, grey(0x1000), rowValue(3))
	// Bottom row is field 0's extra line.
	require.Equal(t, grey(0), rowValue(4))
}

func TestRenderSplit(t *testing.T) {
	src := &testSource{tag: "split", typeName: video.TypeName, fields: constantFields(2, 4, []int{2}, true), params: fullRange()}
	r, node := makeRenderer(t, src)

	res := r.RenderOutput(node, Split, 0, "", stage.Random)
	require.True(t, res.Success, res.Err)
	require.Equal(t, 4, res.Image.Height)

	rowValue := func(y int) uint8 { return res.Image.RGB[y*res.Image.Width*3] }
	require.Equal(t, grey(0), rowValue(0))
	require.Equal(t, grey(0), rowValue(1))
	require.Equal(t, grey(0x1000), rowValue(2))
	require.Equal(t, grey(0x1000), rowValue(3))
}

func TestDropoutOverlay(t *testing.T) {
	fields := constantFields(1, 30, []int{8}, true)
	fields[0].Dropouts = []video.DropoutRegion{{Line: 5, StartSample: 10, EndSample: 20}}
	src := &testSource{tag: "dropout", typeName: video.TypeName, fields: fields, params: fullRange()}
	r, node := makeRenderer(t, src)

	// Without the overlay the dropout pixels carry the scaled luma, but
	// the region is still reported.
	plain := r.RenderOutput(node, Field, 0, "", stage.Random)
	require.True(t, plain.Success, plain.Err)
	require.Equal(t, fields[0].Dropouts, plain.Image.Dropouts)
	at := func(img video.PreviewImage, x, y int) (uint8, uint8, uint8) {
		i := (y*img.Width + x) * 3
		return img.RGB[i], img.RGB[i+1], img.RGB[i+2]
	}
	pr, pg, pb := at(plain.Image, 12, 5)
	require.Equal(t, grey(0), pr)
	require.Equal(t, grey(0), pg)
	require.Equal(t, grey(0), pb)

	// With the overlay the pixels are 75% red.
	r.SetShowDropouts(true)
	over := r.RenderOutput(node, Field, 0, "", stage.Random)
	require.True(t, over.Success, over.Err)
	require.Equal(t, fields[0].Dropouts, over.Image.Dropouts)
	or, og, ob := at(over.Image, 12, 5)
	require.GreaterOrEqual(t, or, uint8(191))
	require.Equal(t, pg/4, og)
	require.Equal(t, pb/4, ob)

	// Outside the region the pixels are untouched.
	xr, _, _ := at(over.Image, 25, 5)
	require.Equal(t, grey(0), xr)
}

func TestRGBFastPath(t *testing.T) {
	// Two pixels per line of interleaved 16-bit RGB; no IRE scaling, just
	// a shift to 8 bits per channel.
	fields := []video.FieldData{{
		Descriptor: video.FieldDescriptor{Width: 6, Height: 2},
		Samples: []uint16{
			0xff00, 0x0000, 0x0000, 0x0000, 0xff00, 0x0000,
			0x0000, 0x0000, 0xff00, 0x8000, 0x8000, 0x8000,
		},
	}}
	src := &testSource{tag: "rgb", typeName: video.RGBTypeName, fields: fields, params: fullRange()}
	r, node := makeRenderer(t, src)

	res := r.RenderOutput(node, Frame, 0, "", stage.Random)
	require.True(t, res.Success, res.Err)
	require.Equal(t, 2, res.Image.Width)
	require.Equal(t, 2, res.Image.Height)
	require.Equal(t, []byte{
		0xff, 0x00, 0x00, 0x00, 0xff, 0x00,
		0x00, 0x00, 0xff, 0x80, 0x80, 0x80,
	}, res.Image.RGB)
}

func TestAvailableOutputs(t *testing.T) {
	src := &testSource{tag: "avail", typeName: video.TypeName, fields: constantFields(4, 4, []int{2}, true), params: fullRange()}
	r, node := makeRenderer(t, src)

	counts := map[OutputType]uint64{}
	for _, info := range r.AvailableOutputs(node) {
		counts[info.Type] = info.Count
	}
	require.EqualValues(t, 4, counts[Field])
	require.EqualValues(t, 2, counts[Frame])
	require.EqualValues(t, 2, counts[FrameReversed])
	require.EqualValues(t, 2, counts[Split])
	require.EqualValues(t, 4, counts[Luma])
	require.Zero(t, counts[Composite])

	require.EqualValues(t, 2, r.OutputCount(node, Frame))
	require.Zero(t, r.OutputCount(node, Composite))
}

func TestFrameOffsetFromParity(t *testing.T) {
	// Field 0 declares itself a second field, so frame 0 begins at field
	// 1 and only one whole frame fits in four fields.
	src := &testSource{tag: "offset", typeName: video.TypeName, fields: constantFields(4, 4, []int{2}, false), params: fullRange()}
	r, node := makeRenderer(t, src)

	require.EqualValues(t, 1, r.OutputCount(node, Frame))
	ff := r.FrameFields(node, 0)
	require.True(t, ff.Valid)
	require.EqualValues(t, 1, ff.First)
	require.EqualValues(t, 2, ff.Second)
}

func TestSuggestedViewNodeEmpty(t *testing.T) {
	r := NewRenderer(dag.New(), dag.NewExecutor((*logging.TestLogger)(t)), (*logging.TestLogger)(t))
	s := r.SuggestedViewNode()
	require.False(t, s.HasNodes)
	require.False(t, s.Valid())
	require.Equal(t, dag.NoNode, s.Node)
	require.NotEmpty(t, s.Message)

	// The placeholder node renders a text image rather than failing.
	res := r.RenderOutput(dag.NoNode, Field, 0, "", stage.Random)
	require.True(t, res.Success)
	require.True(t, res.Image.Valid())
}

func TestItemLabels(t *testing.T) {
	r := NewRenderer(dag.New(), dag.NewExecutor((*logging.TestLogger)(t)), (*logging.TestLogger)(t))

	tests := []struct {
		name  string
		t     OutputType
		index uint64
		total uint64
		want  string
	}{
		{name: "field", t: Field, index: 100, total: 500, want: "Field 101 / 500"},
		{name: "frame", t: Frame, index: 62, total: 250, want: "Frame 63 (125-126) / 250"},
		{name: "frame reversed", t: FrameReversed, index: 62, total: 250, want: "Frame (Reversed) 63 (126-125) / 250"},
		{name: "split", t: Split, index: 4, total: 10, want: "Split 5 / 10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.ItemLabel(tt.t, tt.index, tt.total); got != tt.want {
				t.Errorf("ItemLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEquivalentIndex(t *testing.T) {
	r := NewRenderer(dag.New(), dag.NewExecutor((*logging.TestLogger)(t)), (*logging.TestLogger)(t))

	require.EqualValues(t, 50, r.EquivalentIndex(Field, 100, Frame))
	require.EqualValues(t, 100, r.EquivalentIndex(Frame, 50, Field))
	require.EqualValues(t, 50, r.EquivalentIndex(Frame, 50, FrameReversed))
	require.EqualValues(t, 7, r.EquivalentIndex(Field, 7, Luma))
	require.EqualValues(t, 51, r.EquivalentIndex(Field, 103, Split))
}

func TestAspectRatioModes(t *testing.T) {
	r := NewRenderer(dag.New(), dag.NewExecutor((*logging.TestLogger)(t)), (*logging.TestLogger)(t))

	require.Equal(t, SAR1x1, r.AspectRatioMode())
	require.Equal(t, 1.0, r.CurrentAspectRatioModeInfo().Correction)
	r.SetAspectRatioMode(DAR4x3)
	require.Equal(t, 0.7, r.CurrentAspectRatioModeInfo().Correction)
	require.Len(t, r.AvailableAspectRatioModes(), 2)
}
