/*
NAME
  observe.go

DESCRIPTION
  observe.go provides the per-run observation side-channel threaded through
  stage execution.

AUTHORS
  Dan Kortschak <dan@ausocean.org>
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package stage

import (
	"github.com/google/uuid"

	"github.com/ausocean/orc/video"
)

// Observation kinds published by the stages in this repo.
const (
	ObsVBIFrameNumber = "vbi_frame_number"
	ObsFieldParity    = "field_parity"
	ObsDropout        = "dropout"
	ObsBurstLevel     = "burst_level"
)

// Observation is one datum published during a run: a dropout detection, a
// burst statistic, an inferred parity, a decoded VBI frame number.
type Observation struct {
	// Kind names the observation, e.g. ObsVBIFrameNumber.
	Kind string

	// Source is the fingerprint of the artifact the observation was made
	// on, so that consumers with several inputs can attribute it.
	Source string

	// Field is the field the observation concerns, when HasField is set.
	Field    video.FieldID
	HasField bool

	// Value is the observation payload.
	Value interface{}
}

// Observations is the mutable side-channel scoped to a single DAG run.
// Stages publish observations and query those published by earlier nodes.
// Execution within a run is single-threaded, so no locking is performed; a
// stage that parallelises internally must serialise its own publishes.
type Observations struct {
	runID string
	list  []Observation
}

// NewObservations returns an empty observation context with a fresh run ID.
func NewObservations() *Observations {
	return &Observations{runID: uuid.NewString()}
}

// RunID identifies the DAG run this context belongs to.
func (o *Observations) RunID() string { return o.runID }

// Publish records an observation.
func (o *Observations) Publish(ob Observation) {
	o.list = append(o.list, ob)
}

// Query returns all observations of a kind, in publication order.
func (o *Observations) Query(kind string) []Observation {
	var out []Observation
	for _, ob := range o.list {
		if ob.Kind == kind {
			out = append(out, ob)
		}
	}
	return out
}

// QueryField returns the most recent observation of a kind for a field of
// the given source artifact.
func (o *Observations) QueryField(kind, source string, field video.FieldID) (Observation, bool) {
	for i := len(o.list) - 1; i >= 0; i-- {
		ob := o.list[i]
		if ob.Kind == kind && ob.Source == source && ob.HasField && ob.Field == field {
			return ob, true
		}
	}
	return Observation{}, false
}

// Len returns the number of observations published so far.
func (o *Observations) Len() int { return len(o.list) }
