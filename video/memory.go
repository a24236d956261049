/*
NAME
  memory.go

DESCRIPTION
  memory.go provides an in-memory field representation backed by sample
  buffers, used by source stages and tests.

AUTHORS
  Alan Noble <alan@ausocean.org>
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package video

import "github.com/ausocean/orc/artifact"

// FieldData holds the sample lanes and metadata of one field of a
// MemoryRepresentation. Samples is the combined (or luma-only) lane,
// row-major, of length Descriptor.Width*Descriptor.Height. Luma and Chroma
// are optional separate lanes of the same shape.
type FieldData struct {
	Descriptor FieldDescriptor
	Samples    []uint16
	Luma       []uint16
	Chroma     []uint16
	Parity     *ParityHint
	Dropouts   []DropoutRegion
	VBIFrame   *int32
	Audio      []int16
}

// MemoryRepresentation is a Representation with all sample data resident in
// memory. It is immutable after construction.
type MemoryRepresentation struct {
	artifact.Meta
	fields   []FieldData
	params   *Parameters
	separate bool
}

// NewMemoryRepresentation returns a representation over the given fields.
// The type name is TypeName or RGBTypeName. Separate channels are reported
// when every field carries luma and chroma lanes.
func NewMemoryRepresentation(typeName string, prov artifact.Provenance, output int, fields []FieldData, params *Parameters) *MemoryRepresentation {
	separate := len(fields) != 0
	for _, f := range fields {
		if f.Luma == nil || f.Chroma == nil {
			separate = false
			break
		}
	}
	return &MemoryRepresentation{
		Meta:     artifact.NewMeta(typeName, prov, output),
		fields:   fields,
		params:   params,
		separate: separate,
	}
}

// FieldCount returns the number of fields available.
func (r *MemoryRepresentation) FieldCount() uint64 { return uint64(len(r.fields)) }

// HasField reports whether the field exists.
func (r *MemoryRepresentation) HasField(id FieldID) bool { return uint64(id) < uint64(len(r.fields)) }

// Descriptor returns the dimensions of a field.
func (r *MemoryRepresentation) Descriptor(id FieldID) (FieldDescriptor, bool) {
	if !r.HasField(id) {
		return FieldDescriptor{}, false
	}
	return r.fields[id].Descriptor, true
}

func (r *MemoryRepresentation) line(id FieldID, line int, lane func(*FieldData) []uint16) ([]uint16, bool) {
	if !r.HasField(id) {
		return nil, false
	}
	f := &r.fields[id]
	if line < 0 || line >= f.Descriptor.Height {
		return nil, false
	}
	data := lane(f)
	if data == nil {
		return nil, false
	}
	w := f.Descriptor.Width
	return data[line*w : (line+1)*w : (line+1)*w], true
}

// Line returns a borrowed view of a single scanline.
func (r *MemoryRepresentation) Line(id FieldID, line int) ([]uint16, bool) {
	return r.line(id, line, func(f *FieldData) []uint16 { return f.Samples })
}

// Field returns a copy of a full field, row-major.
func (r *MemoryRepresentation) Field(id FieldID) []uint16 {
	if !r.HasField(id) {
		return nil
	}
	f := &r.fields[id]
	out := make([]uint16, len(f.Samples))
	copy(out, f.Samples)
	return out
}

// Parameters returns the capture's video parameters, if known.
func (r *MemoryRepresentation) Parameters() (Parameters, bool) {
	if r.params == nil {
		return Parameters{}, false
	}
	return *r.params, true
}

// ParityHint returns the frame parity of a field, if known.
func (r *MemoryRepresentation) ParityHint(id FieldID) (ParityHint, bool) {
	if !r.HasField(id) || r.fields[id].Parity == nil {
		return ParityHint{}, false
	}
	return *r.fields[id].Parity, true
}

// DropoutHints returns the observed dropout extents on a field.
func (r *MemoryRepresentation) DropoutHints(id FieldID) []DropoutRegion {
	if !r.HasField(id) {
		return nil
	}
	return r.fields[id].Dropouts
}

// HasSeparateChannels reports whether luma and chroma travel separately.
func (r *MemoryRepresentation) HasSeparateChannels() bool { return r.separate }

// LineLuma returns a borrowed view of a scanline's luma lane, falling back
// to the combined lane for composite sources.
func (r *MemoryRepresentation) LineLuma(id FieldID, line int) ([]uint16, bool) {
	if !r.separate {
		return r.Line(id, line)
	}
	return r.line(id, line, func(f *FieldData) []uint16 { return f.Luma })
}

// LineChroma returns a borrowed view of a scanline's chroma lane, falling
// back to the combined lane for composite sources.
func (r *MemoryRepresentation) LineChroma(id FieldID, line int) ([]uint16, bool) {
	if !r.separate {
		return r.Line(id, line)
	}
	return r.line(id, line, func(f *FieldData) []uint16 { return f.Chroma })
}

// FieldLuma returns a copy of a full field's luma lane.
func (r *MemoryRepresentation) FieldLuma(id FieldID) []uint16 {
	if !r.separate {
		return r.Field(id)
	}
	if !r.HasField(id) {
		return nil
	}
	out := make([]uint16, len(r.fields[id].Luma))
	copy(out, r.fields[id].Luma)
	return out
}

// FieldChroma returns a copy of a full field's chroma lane.
func (r *MemoryRepresentation) FieldChroma(id FieldID) []uint16 {
	if !r.separate {
		return r.Field(id)
	}
	if !r.HasField(id) {
		return nil
	}
	out := make([]uint16, len(r.fields[id].Chroma))
	copy(out, r.fields[id].Chroma)
	return out
}

// VBIFrameNumber returns the frame number recovered from a field's VBI.
func (r *MemoryRepresentation) VBIFrameNumber(id FieldID) (int32, bool) {
	if !r.HasField(id) || r.fields[id].VBIFrame == nil {
		return 0, false
	}
	return *r.fields[id].VBIFrame, true
}

// HasAudio reports whether any field carries recovered audio samples.
func (r *MemoryRepresentation) HasAudio() bool {
	for i := range r.fields {
		if len(r.fields[i].Audio) != 0 {
			return true
		}
	}
	return false
}

// FieldAudio returns the audio samples recovered during a field.
func (r *MemoryRepresentation) FieldAudio(id FieldID) []int16 {
	if !r.HasField(id) {
		return nil
	}
	return r.fields[id].Audio
}
