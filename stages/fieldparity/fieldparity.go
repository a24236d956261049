/*
NAME
  fieldparity.go

DESCRIPTION
  fieldparity.go provides the field parity inversion stage, used to correct
  captures whose first/second field detection came out swapped. Sample data
  passes through untouched; only the parity metadata changes.

AUTHORS
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package fieldparity provides the field parity inversion transform stage.
package fieldparity

import (
	"github.com/pkg/errors"

	"github.com/ausocean/orc/artifact"
	"github.com/ausocean/orc/param"
	"github.com/ausocean/orc/stage"
	"github.com/ausocean/orc/video"
)

// Name is the canonical stage name.
const Name = "field_invert"

func init() {
	stage.Register(Name, func() stage.Stage { return New() })
}

// Stage is the parity inversion transform. It carries no parameters.
type Stage struct{}

// New returns a parity inversion stage.
func New() *Stage { return &Stage{} }

// Version participates in artifact fingerprints.
func (s *Stage) Version() string { return "1.0" }

// Info describes the stage's connection shape.
func (s *Stage) Info() stage.NodeTypeInfo {
	return stage.NodeTypeInfo{
		Type:        stage.Transform,
		Name:        Name,
		DisplayName: "Field Invert",
		Description: "Invert every field's first/second parity hint",
		MinInputs:   1,
		MaxInputs:   1,
		MinOutputs:  1,
		MaxOutputs:  1,
		Compat:      stage.CompatAll,
	}
}

func (s *Stage) RequiredInputCount() int { return 1 }
func (s *Stage) OutputCount() int        { return 1 }

// Execute wraps the input in a parity-inverting representation.
func (s *Stage) Execute(inputs []artifact.Artifact, params param.Map, obs *stage.Observations) ([]artifact.Artifact, error) {
	if len(inputs) != 1 {
		return nil, errors.Errorf("want 1 input, got %d", len(inputs))
	}
	src, ok := inputs[0].(video.Representation)
	if !ok {
		return nil, errors.New("input is not a field representation")
	}
	prov := artifact.Provenance{Stage: Name, Version: s.Version(), Parameters: params, Inputs: []string{src.ID()}}
	return []artifact.Artifact{video.NewParityInverted(prov, 0, src)}, nil
}
