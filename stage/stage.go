/*
NAME
  stage.go

DESCRIPTION
  stage.go provides the processing stage contract: connection shape,
  versioning, execution entry point and the optional parameterized
  capability.

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

// Package stage defines the contract implemented by every processing stage,
// the capability mixins a stage may add (parameters, triggerable sink,
// preview), the per-run observation side-channel, and the process-wide
// stage registry.
//
// A stage is a passive callable owned by a DAG node. Capabilities are
// modelled as small interfaces; callers discover them with type assertions
// rather than through one wide interface.
package stage

import (
	"math"

	"github.com/ausocean/orc/artifact"
	"github.com/ausocean/orc/param"
	"github.com/ausocean/orc/video"
)

// NodeType enumerates the connectivity patterns of a DAG node.
type NodeType int

const (
	// Source produces outputs from no inputs.
	Source NodeType = iota
	// Sink consumes inputs and produces no outputs.
	Sink
	// Transform has exactly one input and one output.
	Transform
	// Splitter fans one input out to multiple outputs.
	Splitter
	// Merger folds multiple inputs into one output.
	Merger
	// Complex has multiple inputs and multiple outputs.
	Complex
)

// Unbounded marks a connection degree with no upper limit.
const Unbounded = math.MaxUint32

// Format compatibility flags for NodeTypeInfo.
const (
	CompatNTSC uint32 = 1 << iota
	CompatPAL

	CompatAll = CompatNTSC | CompatPAL
)

// NodeTypeInfo describes the connection shape of a stage.
type NodeTypeInfo struct {
	Type        NodeType
	Name        string // Canonical stage name, e.g. "mask_line".
	DisplayName string
	Description string
	MinInputs   uint32
	MaxInputs   uint32
	MinOutputs  uint32
	MaxOutputs  uint32
	Compat      uint32
}

// Stage is a unit of computation with a declared connection shape. Stages
// are constructed once, configured through SetParameters where supported,
// and then invoked through Execute by the DAG executor.
type Stage interface {
	// Version participates in artifact fingerprints; bumping it
	// invalidates cached outputs of the stage.
	Version() string

	// Info describes the stage's connection shape.
	Info() NodeTypeInfo

	// RequiredInputCount returns the runtime input arity. Variadic
	// stages return 0 and communicate bounds through Info.
	RequiredInputCount() int

	// OutputCount returns the runtime output arity, or 0 when the
	// fan-out depends on the inputs.
	OutputCount() int

	// Execute consumes the input artifacts and produces the stage's
	// outputs, each with a filled provenance and consistent fingerprint.
	// Inputs satisfy the declared shape and are non-nil. Parameters have
	// already been validated.
	Execute(inputs []artifact.Artifact, params param.Map, obs *Observations) ([]artifact.Artifact, error)
}

// Parameterized is the capability of stages exposing a typed parameter
// schema. Validation happens at SetParameters time; Execute may assume
// validated parameters.
type Parameterized interface {
	// ParameterDescriptors returns the schema, which may vary with the
	// project's video system and the source kind.
	ParameterDescriptors(format video.System, sourceType string) []param.Descriptor

	// Parameters returns the current values.
	Parameters() param.Map

	// SetParameters validates and applies the given values, returning
	// false and keeping the old values if any parameter fails.
	SetParameters(param.Map) bool
}

// Previewable is the capability of source and transform stages that render
// their own previews. When a stage supports preview the renderer delegates
// to it instead of using the default field path.
type Previewable interface {
	SupportsPreview() bool
	PreviewOptions() []PreviewOption
	RenderPreview(optionID string, index uint64, hint NavigationHint) (video.PreviewImage, error)
}

// NavigationHint tells a previewable stage how indices will be requested.
type NavigationHint int

const (
	// Sequential promises monotonic index access; the stage may prefetch.
	Sequential NavigationHint = iota
	// Random indicates scrubbing; the stage should avoid prefetch.
	Random
)

// PreviewOption is one way of previewing a stage's output.
type PreviewOption struct {
	ID            string
	DisplayName   string
	IsRGB         bool
	Width         int
	Height        int
	Count         uint64
	DARCorrection float64
}
