/*
NAME
  wrapper.go

DESCRIPTION
  wrapper.go provides the lazy composition wrapper over a source field
  representation, plus the generic parity-inverting and field-offset
  wrappers.

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

package video

import "github.com/ausocean/orc/artifact"

// Wrapper is a pass-through Representation over a source. Transform stages
// embed it and override only the calls they change, yielding zero-copy lazy
// pipelines; a chain of wrappers over one source keeps a single set of
// sample data alive. A wrapper has its own fingerprint and provenance; it
// never shares an ID with its source.
type Wrapper struct {
	artifact.Meta
	Source Representation
}

// NewWrapper returns a pass-through wrapper over source. The wrapper keeps
// the source's type name so that, for example, RGB representations stay on
// the preview renderer's fast path through metadata-only transforms.
func NewWrapper(prov artifact.Provenance, output int, source Representation) Wrapper {
	return Wrapper{Meta: artifact.NewMeta(source.TypeName(), prov, output), Source: source}
}

func (w *Wrapper) FieldCount() uint64                          { return w.Source.FieldCount() }
func (w *Wrapper) HasField(id FieldID) bool                    { return w.Source.HasField(id) }
func (w *Wrapper) Descriptor(id FieldID) (FieldDescriptor, bool) { return w.Source.Descriptor(id) }
func (w *Wrapper) Line(id FieldID, line int) ([]uint16, bool)  { return w.Source.Line(id, line) }
func (w *Wrapper) Field(id FieldID) []uint16                   { return w.Source.Field(id) }
func (w *Wrapper) Parameters() (Parameters, bool)              { return w.Source.Parameters() }
func (w *Wrapper) ParityHint(id FieldID) (ParityHint, bool)    { return w.Source.ParityHint(id) }
func (w *Wrapper) DropoutHints(id FieldID) []DropoutRegion     { return w.Source.DropoutHints(id) }
func (w *Wrapper) HasSeparateChannels() bool                   { return w.Source.HasSeparateChannels() }
func (w *Wrapper) LineLuma(id FieldID, line int) ([]uint16, bool) {
	return w.Source.LineLuma(id, line)
}
func (w *Wrapper) LineChroma(id FieldID, line int) ([]uint16, bool) {
	return w.Source.LineChroma(id, line)
}
func (w *Wrapper) FieldLuma(id FieldID) []uint16   { return w.Source.FieldLuma(id) }
func (w *Wrapper) FieldChroma(id FieldID) []uint16 { return w.Source.FieldChroma(id) }

// VBIFrameNumber forwards to the source when it carries VBI data.
func (w *Wrapper) VBIFrameNumber(id FieldID) (int32, bool) {
	if s, ok := w.Source.(VBISource); ok {
		return s.VBIFrameNumber(id)
	}
	return 0, false
}

// HasAudio forwards to the source when it carries audio.
func (w *Wrapper) HasAudio() bool {
	if s, ok := w.Source.(AudioSource); ok {
		return s.HasAudio()
	}
	return false
}

// FieldAudio forwards to the source when it carries audio.
func (w *Wrapper) FieldAudio(id FieldID) []int16 {
	if s, ok := w.Source.(AudioSource); ok {
		return s.FieldAudio(id)
	}
	return nil
}

// ParityInverted is a wrapper that flips every field's parity hint. Sample
// data is untouched.
type ParityInverted struct {
	Wrapper
}

// NewParityInverted returns a parity-inverting wrapper over source.
func NewParityInverted(prov artifact.Provenance, output int, source Representation) *ParityInverted {
	return &ParityInverted{Wrapper: NewWrapper(prov, output, source)}
}

// ParityHint returns the source's hint with the parity flipped.
func (w *ParityInverted) ParityHint(id FieldID) (ParityHint, bool) {
	h, ok := w.Source.ParityHint(id)
	if !ok {
		return ParityHint{}, false
	}
	return ParityHint{IsFirstField: !h.IsFirstField}, true
}

// Offset is a wrapper that skips the first Offset fields of its source, so
// that output field 0 is source field Offset. Used by source alignment.
type Offset struct {
	Wrapper
	offset uint64
}

// NewOffset returns an offset wrapper over source.
func NewOffset(prov artifact.Provenance, output int, source Representation, offset uint64) *Offset {
	return &Offset{Wrapper: NewWrapper(prov, output, source), offset: offset}
}

// FieldOffset returns the number of source fields skipped.
func (w *Offset) FieldOffset() uint64 { return w.offset }

func (w *Offset) src(id FieldID) FieldID { return FieldID(uint64(id) + w.offset) }

// FieldCount returns the number of fields remaining after the offset.
func (w *Offset) FieldCount() uint64 {
	n := w.Source.FieldCount()
	if w.offset >= n {
		return 0
	}
	return n - w.offset
}

func (w *Offset) HasField(id FieldID) bool { return uint64(id) < w.FieldCount() }

func (w *Offset) Descriptor(id FieldID) (FieldDescriptor, bool) {
	if !w.HasField(id) {
		return FieldDescriptor{}, false
	}
	return w.Source.Descriptor(w.src(id))
}

func (w *Offset) Line(id FieldID, line int) ([]uint16, bool) {
	if !w.HasField(id) {
		return nil, false
	}
	return w.Source.Line(w.src(id), line)
}

func (w *Offset) Field(id FieldID) []uint16 {
	if !w.HasField(id) {
		return nil
	}
	return w.Source.Field(w.src(id))
}

func (w *Offset) ParityHint(id FieldID) (ParityHint, bool) {
	if !w.HasField(id) {
		return ParityHint{}, false
	}
	return w.Source.ParityHint(w.src(id))
}

func (w *Offset) DropoutHints(id FieldID) []DropoutRegion {
	if !w.HasField(id) {
		return nil
	}
	return w.Source.DropoutHints(w.src(id))
}

func (w *Offset) LineLuma(id FieldID, line int) ([]uint16, bool) {
	if !w.HasField(id) {
		return nil, false
	}
	return w.Source.LineLuma(w.src(id), line)
}

func (w *Offset) LineChroma(id FieldID, line int) ([]uint16, bool) {
	if !w.HasField(id) {
		return nil, false
	}
	return w.Source.LineChroma(w.src(id), line)
}

func (w *Offset) FieldLuma(id FieldID) []uint16 {
	if !w.HasField(id) {
		return nil
	}
	return w.Source.FieldLuma(w.src(id))
}

func (w *Offset) FieldChroma(id FieldID) []uint16 {
	if !w.HasField(id) {
		return nil
	}
	return w.Source.FieldChroma(w.src(id))
}

func (w *Offset) VBIFrameNumber(id FieldID) (int32, bool) {
	if !w.HasField(id) {
		return 0, false
	}
	if s, ok := w.Source.(VBISource); ok {
		return s.VBIFrameNumber(w.src(id))
	}
	return 0, false
}

func (w *Offset) FieldAudio(id FieldID) []int16 {
	if !w.HasField(id) {
		return nil
	}
	if s, ok := w.Source.(AudioSource); ok {
		return s.FieldAudio(w.src(id))
	}
	return nil
}
