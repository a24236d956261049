/*
NAME
  sourcealign.go

DESCRIPTION
  sourcealign.go provides the source alignment stage: given several
  captures of the same disc, it offsets each so that field 0 of every
  output corresponds to the same VBI frame, ready for stacking.

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

// Package sourcealign provides the multi-source VBI alignment stage.
package sourcealign

import (
	"github.com/pkg/errors"

	"github.com/ausocean/orc/artifact"
	"github.com/ausocean/orc/param"
	"github.com/ausocean/orc/stage"
	"github.com/ausocean/orc/video"
)

// Name is the canonical stage name.
const Name = "source_align"

func init() {
	stage.Register(Name, func() stage.Stage { return New() })
}

// Stage aligns two or more sources on their common starting VBI frame,
// producing one offset output per input.
type Stage struct {
	stage.ParamStore
}

// New returns a source alignment stage.
func New() *Stage { return &Stage{} }

// Version participates in artifact fingerprints.
func (s *Stage) Version() string { return "1.0" }

// Info describes the stage's connection shape.
func (s *Stage) Info() stage.NodeTypeInfo {
	return stage.NodeTypeInfo{
		Type:        stage.Complex,
		Name:        Name,
		DisplayName: "Source Align",
		Description: "Synchronize multiple sources by VBI frame number",
		MinInputs:   2,
		MaxInputs:   stage.Unbounded,
		MinOutputs:  2,
		MaxOutputs:  stage.Unbounded,
		Compat:      stage.CompatAll,
	}
}

func (s *Stage) RequiredInputCount() int { return 0 }

// OutputCount is zero: the fan-out is one output per input.
func (s *Stage) OutputCount() int { return 0 }

// ParameterDescriptors returns the stage's schema.
func (s *Stage) ParameterDescriptors(format video.System, sourceType string) []param.Descriptor {
	t := param.NewBool(true)
	return []param.Descriptor{
		{
			Name:        "enforce_field_order",
			DisplayName: "Enforce Field Order",
			Description: "Bump offsets so every output starts on a first field",
			Type:        param.Bool,
			Constraints: param.Constraints{Default: &t},
		},
	}
}

// SetParameters validates and applies the given values.
func (s *Stage) SetParameters(m param.Map) bool {
	return s.Set(s.ParameterDescriptors(video.SystemUnknown, ""), m)
}

// vbiAt returns the VBI frame number of a field, from the representation
// itself when it carries VBI data, else from observations published
// earlier in the run.
func vbiAt(rep video.Representation, id video.FieldID, obs *stage.Observations) (int32, bool) {
	if src, ok := rep.(video.VBISource); ok {
		if n, ok := src.VBIFrameNumber(id); ok {
			return n, true
		}
	}
	if obs != nil {
		if ob, ok := obs.QueryField(stage.ObsVBIFrameNumber, rep.ID(), id); ok {
			if n, ok := ob.Value.(int32); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// alignmentOffsets finds, for each source, the index of its first field
// whose VBI frame equals the latest starting frame across all sources.
func alignmentOffsets(reps []video.Representation, obs *stage.Observations) ([]uint64, error) {
	// The common start is the maximum of the sources' first decoded
	// frame numbers.
	var target int32
	for i, rep := range reps {
		first, ok := firstVBI(rep, obs)
		if !ok {
			return nil, errors.Errorf("input %d carries no VBI frame numbers", i)
		}
		if i == 0 || first > target {
			target = first
		}
	}

	offsets := make([]uint64, len(reps))
	for i, rep := range reps {
		found := false
		for f := uint64(0); f < rep.FieldCount(); f++ {
			if n, ok := vbiAt(rep, video.FieldID(f), obs); ok && n == target {
				offsets[i] = f
				found = true
				break
			}
		}
		if !found {
			return nil, errors.Errorf("input %d never reaches VBI frame %d", i, target)
		}
	}
	return offsets, nil
}

func firstVBI(rep video.Representation, obs *stage.Observations) (int32, bool) {
	for f := uint64(0); f < rep.FieldCount(); f++ {
		if n, ok := vbiAt(rep, video.FieldID(f), obs); ok {
			return n, true
		}
	}
	return 0, false
}

// enforceFieldOrder bumps any offset that would place a second field at
// output index 0 by one field.
func enforceFieldOrder(reps []video.Representation, offsets []uint64) []uint64 {
	for i, rep := range reps {
		if h, ok := rep.ParityHint(video.FieldID(offsets[i])); ok && !h.IsFirstField {
			offsets[i]++
		}
	}
	return offsets
}

// Execute computes the alignment offsets and wraps each input so that its
// output field 0 corresponds to the common starting VBI frame.
func (s *Stage) Execute(inputs []artifact.Artifact, params param.Map, obs *stage.Observations) ([]artifact.Artifact, error) {
	if len(inputs) < 2 {
		return nil, errors.Errorf("want at least 2 inputs, got %d", len(inputs))
	}
	reps := make([]video.Representation, len(inputs))
	var ids []string
	for i, in := range inputs {
		rep, ok := in.(video.Representation)
		if !ok {
			return nil, errors.Errorf("input %d is not a field representation", i)
		}
		reps[i] = rep
		ids = append(ids, rep.ID())
	}

	offsets, err := alignmentOffsets(reps, obs)
	if err != nil {
		return nil, err
	}

	enforce := true
	if v, ok := params["enforce_field_order"]; ok {
		enforce, _ = v.Bool()
	}
	if enforce {
		offsets = enforceFieldOrder(reps, offsets)
	}

	prov := artifact.Provenance{Stage: Name, Version: s.Version(), Parameters: params, Inputs: ids}
	outs := make([]artifact.Artifact, len(reps))
	for i, rep := range reps {
		outs[i] = video.NewOffset(prov, i, rep, offsets[i])
	}
	return outs, nil
}
