/*
NAME
  renderer.go

DESCRIPTION
  renderer.go provides the preview renderer: it turns an arbitrary DAG
  node's field representation into RGB888 images for a GUI, weaving fields
  into frames and scaling 16-bit samples for display.

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

// Package preview renders the output of a processing graph node as RGB888
// images and answers the coordinate-mapping queries interactive GUIs need.
// The renderer holds the DAG read-only and drives the executor's partial
// execution on demand; it never fails hard on bad input, reporting
// unrenderable requests through the result instead.
package preview

import (
	"fmt"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/orc/dag"
	"github.com/ausocean/orc/stage"
	"github.com/ausocean/orc/video"
)

// OutputType enumerates the preview output types.
type OutputType int

const (
	// Field is a single field.
	Field OutputType = iota
	// Frame is two consecutive fields woven on alternating lines in
	// natural parity order.
	Frame
	// FrameReversed is the opposite weave order, used to verify or
	// correct parity detection.
	FrameReversed
	// Split is two consecutive fields stacked vertically, first on top.
	Split
	// Luma is the luma lane of a single field.
	Luma
	// Chroma is the chroma lane of a single field.
	Chroma
	// Composite is reserved.
	Composite
)

// String returns the display name of the output type.
func (t OutputType) String() string {
	switch t {
	case Field:
		return "Field"
	case Frame:
		return "Frame"
	case FrameReversed:
		return "Frame (Reversed)"
	case Split:
		return "Split"
	case Luma:
		return "Luma"
	case Chroma:
		return "Chroma"
	case Composite:
		return "Composite"
	}
	return "Unknown"
}

// OptionID returns the stage preview option ID corresponding to the type.
func (t OutputType) OptionID() string {
	switch t {
	case Field:
		return "field"
	case Frame:
		return "frame"
	case FrameReversed:
		return "frame_reversed"
	case Split:
		return "split"
	case Luma:
		return "luma"
	case Chroma:
		return "chroma"
	case Composite:
		return "composite"
	}
	return ""
}

// isFrameKind reports whether the type addresses field pairs rather than
// single fields.
func isFrameKind(t OutputType) bool {
	return t == Frame || t == FrameReversed || t == Split
}

// AspectRatioMode selects how the GUI should scale image widths.
type AspectRatioMode int

const (
	// SAR1x1 displays square samples, no correction.
	SAR1x1 AspectRatioMode = iota
	// DAR4x3 corrects for the non-square samples of PAL/NTSC captures.
	DAR4x3
)

// darCorrection is the width scale applied in DAR 4:3 mode for PAL/NTSC
// sample aspect.
const darCorrection = 0.7

// AspectRatioModeInfo describes an aspect ratio option for the GUI.
type AspectRatioModeInfo struct {
	Mode        AspectRatioMode
	DisplayName string
	Correction  float64
}

// OutputInfo reports the availability of one output type at a node.
type OutputInfo struct {
	Type                OutputType
	DisplayName         string
	Count               uint64
	Available           bool
	DARCorrection       float64
	OptionID            string
	DropoutsAvailable   bool
	HasSeparateChannels bool
}

// RenderResult is the outcome of a render request.
type RenderResult struct {
	Image   video.PreviewImage
	Success bool
	Err     string
	Node    dag.NodeID
	Type    OutputType
	Index   uint64
}

// SuggestedViewNode is the renderer's advice on what a GUI should display
// by default.
type SuggestedViewNode struct {
	Node     dag.NodeID
	HasNodes bool
	Message  string
}

// Valid reports whether a real node was suggested.
func (s SuggestedViewNode) Valid() bool { return s.Node != dag.NoNode }

// Renderer renders node outputs for display. Not safe for concurrent use.
type Renderer struct {
	dag          *dag.DAG
	exec         *dag.Executor
	mode         AspectRatioMode
	showDropouts bool
	log          logging.Logger
}

// NewRenderer returns a renderer over the given graph, driving the executor
// for on-demand partial execution.
func NewRenderer(d *dag.DAG, exec *dag.Executor, l logging.Logger) *Renderer {
	return &Renderer{dag: d, exec: exec, log: l}
}

// UpdateDAG swaps the graph being rendered. The executor's cache survives;
// fingerprints are content-addressed, so unchanged subgraphs stay warm.
func (r *Renderer) UpdateDAG(d *dag.DAG) { r.dag = d }

// SetAspectRatioMode selects the display aspect mode.
func (r *Renderer) SetAspectRatioMode(m AspectRatioMode) { r.mode = m }

// AspectRatioMode returns the current display aspect mode.
func (r *Renderer) AspectRatioMode() AspectRatioMode { return r.mode }

// AvailableAspectRatioModes lists the selectable aspect modes.
func (r *Renderer) AvailableAspectRatioModes() []AspectRatioModeInfo {
	return []AspectRatioModeInfo{
		{Mode: SAR1x1, DisplayName: "SAR 1:1", Correction: 1},
		{Mode: DAR4x3, DisplayName: "DAR 4:3", Correction: darCorrection},
	}
}

// CurrentAspectRatioModeInfo describes the selected aspect mode.
func (r *Renderer) CurrentAspectRatioModeInfo() AspectRatioModeInfo {
	for _, m := range r.AvailableAspectRatioModes() {
		if m.Mode == r.mode {
			return m
		}
	}
	return AspectRatioModeInfo{Mode: r.mode, DisplayName: "Unknown", Correction: 1}
}

// SetShowDropouts toggles blending dropout regions onto rendered images.
func (r *Renderer) SetShowDropouts(show bool) { r.showDropouts = show }

// ShowDropouts reports whether dropout blending is enabled.
func (r *Renderer) ShowDropouts() bool { return r.showDropouts }

// node returns the DAG node with the given ID.
func (r *Renderer) node(id dag.NodeID) (dag.Node, bool) {
	if r.dag == nil {
		return dag.Node{}, false
	}
	for _, n := range r.dag.Nodes() {
		if n.ID == id {
			return n, true
		}
	}
	return dag.Node{}, false
}

// RepresentationAt executes the graph up to a node and returns its first
// output as a field representation. This gives callers such as a line scope
// dialog direct access to the 16-bit sample data.
func (r *Renderer) RepresentationAt(id dag.NodeID) (video.Representation, error) {
	if r.dag == nil || r.exec == nil {
		return nil, errors.New("no DAG to render")
	}
	outputs, err := r.exec.ExecuteToNode(r.dag, id)
	if err != nil {
		return nil, errors.Wrapf(err, "could not execute to node %d", id)
	}
	outs := outputs[id]
	if len(outs) == 0 {
		return nil, errors.Errorf("node %d produced no outputs", id)
	}
	rep, ok := outs[0].(video.Representation)
	if !ok {
		return nil, errors.Errorf("node %d output is not a field representation", id)
	}
	return rep, nil
}

// frameOffset returns the field index where frame 0 begins: 0 when field 0
// declares itself a first field (or carries no hint), otherwise 1 so that
// frames start on a first-field boundary.
func frameOffset(rep video.Representation) uint64 {
	if h, ok := rep.ParityHint(0); ok && !h.IsFirstField {
		return 1
	}
	return 0
}

// frameCount returns the number of whole frames after the parity offset.
func frameCount(rep video.Representation) uint64 {
	n := rep.FieldCount()
	off := frameOffset(rep)
	if n <= off {
		return 0
	}
	return (n - off) / 2
}

// AvailableOutputs reports, for each output type, how many items exist at a
// node and whether the type can be rendered there.
func (r *Renderer) AvailableOutputs(id dag.NodeID) []OutputInfo {
	n, ok := r.node(id)
	if !ok {
		return nil
	}

	// A previewable stage declares its own options.
	if p, ok := n.Stage.(stage.Previewable); ok && p.SupportsPreview() {
		var infos []OutputInfo
		for _, opt := range p.PreviewOptions() {
			infos = append(infos, OutputInfo{
				Type:          typeForOptionID(opt.ID),
				DisplayName:   opt.DisplayName,
				Count:         opt.Count,
				Available:     opt.Count > 0,
				DARCorrection: opt.DARCorrection,
				OptionID:      opt.ID,
			})
		}
		return infos
	}

	rep, err := r.RepresentationAt(id)
	if err != nil {
		if r.log != nil {
			r.log.Warning("could not resolve representation", "node", id, "error", err.Error())
		}
		return nil
	}

	fields := rep.FieldCount()
	frames := frameCount(rep)
	sep := rep.HasSeparateChannels()
	dropouts := false
	for i := uint64(0); i < fields; i++ {
		if len(rep.DropoutHints(video.FieldID(i))) != 0 {
			dropouts = true
			break
		}
	}

	counts := map[OutputType]uint64{
		Field:         fields,
		Frame:         frames,
		FrameReversed: frames,
		Split:         frames,
		Luma:          fields,
	}
	if sep {
		counts[Chroma] = fields
	}

	var infos []OutputInfo
	for _, t := range []OutputType{Field, Frame, FrameReversed, Split, Luma, Chroma, Composite} {
		c := counts[t]
		infos = append(infos, OutputInfo{
			Type:                t,
			DisplayName:         t.String(),
			Count:               c,
			Available:           c > 0,
			DARCorrection:       darCorrection,
			OptionID:            t.OptionID(),
			DropoutsAvailable:   dropouts,
			HasSeparateChannels: sep,
		})
	}
	return infos
}

// typeForOptionID maps a stage preview option ID back to an output type.
func typeForOptionID(id string) OutputType {
	for _, t := range []OutputType{Field, Frame, FrameReversed, Split, Luma, Chroma, Composite} {
		if t.OptionID() == id {
			return t
		}
	}
	return Field
}

// OutputCount returns the number of items of an output type at a node, or
// zero when the type is unavailable.
func (r *Renderer) OutputCount(id dag.NodeID, t OutputType) uint64 {
	for _, info := range r.AvailableOutputs(id) {
		if info.Type == t {
			return info.Count
		}
	}
	return 0
}

// SuggestedViewNode advises which node a GUI should display by default:
// the first source node, else the first non-sink node, else the first
// previewable sink, else the NoNode placeholder whose render is a text
// image, so callers need not special-case empty graphs.
func (r *Renderer) SuggestedViewNode() SuggestedViewNode {
	if r.dag == nil || len(r.dag.Nodes()) == 0 {
		return SuggestedViewNode{Node: dag.NoNode, HasNodes: false, Message: "No source available: the DAG contains no nodes"}
	}
	nodes := r.dag.Nodes()
	for _, n := range nodes {
		if n.Stage != nil && n.Stage.Info().Type == stage.Source {
			return SuggestedViewNode{Node: n.ID, HasNodes: true, Message: "Viewing source node"}
		}
	}
	for _, n := range nodes {
		if n.Stage != nil && n.Stage.Info().Type != stage.Sink {
			return SuggestedViewNode{Node: n.ID, HasNodes: true, Message: "Viewing first node with outputs"}
		}
	}
	for _, n := range nodes {
		if p, ok := n.Stage.(stage.Previewable); ok && p.SupportsPreview() {
			return SuggestedViewNode{Node: n.ID, HasNodes: true, Message: "Viewing previewable sink"}
		}
	}
	return SuggestedViewNode{Node: dag.NoNode, HasNodes: true, Message: "No source available: no node can be previewed"}
}

// RenderOutput renders one item of an output type at a node. Failures are
// reported in the result; the renderer does not panic on bad input.
func (r *Renderer) RenderOutput(id dag.NodeID, t OutputType, index uint64, optionID string, hint stage.NavigationHint) RenderResult {
	fail := func(format string, args ...interface{}) RenderResult {
		return RenderResult{Success: false, Err: fmt.Sprintf(format, args...), Node: id, Type: t, Index: index}
	}

	if id == dag.NoNode {
		return RenderResult{Image: placeholderImage("No source available"), Success: true, Node: id, Type: t, Index: index}
	}
	n, ok := r.node(id)
	if !ok {
		return fail("node %d not in DAG", id)
	}

	if p, ok := n.Stage.(stage.Previewable); ok && p.SupportsPreview() {
		opt := optionID
		if opt == "" {
			opt = t.OptionID()
		}
		img, err := p.RenderPreview(opt, index, hint)
		if err != nil {
			return fail("stage preview failed: %v", err)
		}
		return RenderResult{Image: img, Success: true, Node: id, Type: t, Index: index}
	}

	rep, err := r.RepresentationAt(id)
	if err != nil {
		return fail("%v", err)
	}

	var img video.PreviewImage
	switch {
	case rep.TypeName() == video.RGBTypeName:
		img, err = renderRGBFrame(rep, video.FieldID(index))
	case t == Field:
		img, err = renderField(rep, video.FieldID(index), laneCombined)
	case t == Luma:
		img, err = renderField(rep, video.FieldID(index), laneLuma)
	case t == Chroma:
		img, err = renderField(rep, video.FieldID(index), laneChroma)
	case t == Frame || t == FrameReversed:
		img, err = renderFrame(rep, index, t == FrameReversed)
	case t == Split:
		img, err = renderSplit(rep, index)
	default:
		return fail("output type %v not supported", t)
	}
	if err != nil {
		return fail("%v", err)
	}

	if r.showDropouts {
		overlayDropouts(&img)
	}
	return RenderResult{Image: img, Success: true, Node: id, Type: t, Index: index}
}
