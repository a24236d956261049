/*
NAME
  vfr.go

DESCRIPTION
  vfr.go provides the video field representation interface: a finite,
  restartable, indexed collection of fields of 16-bit samples, with
  side-channel metadata for dropouts and field parity.

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

// Package video provides the field representation artifact shared by video
// processing stages: an immutable lazy view over per-field 16-bit sample
// data plus observation side-channels.
package video

import "github.com/ausocean/orc/artifact"

// Concrete-type discriminators for field representations. The preview
// renderer takes a fast path for RGB representations.
const (
	TypeName = "VideoFieldRepresentation"

	// RGBTypeName marks representations whose sample lanes carry packed
	// 16-bit RGB: three samples per pixel interleaved R,G,B. A field
	// descriptor's width counts samples, so the pixel width of an RGB
	// field is Width/3.
	RGBTypeName = "RGBFieldRepresentation"
)

// FieldID identifies a field within a representation.
type FieldID uint64

// FieldDescriptor gives the dimensions of one field in 16-bit samples.
// Fields within a single representation need not share a height (NTSC:
// 262 vs 263 lines; PAL: 312 vs 313).
type FieldDescriptor struct {
	Width  int
	Height int
}

// DropoutRegion is a horizontal span on a field where the recovered signal
// is known to be unreliable. StartSample is inclusive, EndSample exclusive,
// with StartSample <= EndSample <= Width.
type DropoutRegion struct {
	Line        int
	StartSample int
	EndSample   int
}

// ParityHint declares which of the two fields of a frame a field is.
type ParityHint struct {
	IsFirstField bool
}

// Representation is the dominant artifact type: a finite indexed collection
// of fields. Implementations are immutable after publication; all read
// methods are safe for concurrent use. Out-of-range queries report absence
// rather than failing.
type Representation interface {
	artifact.Artifact

	// FieldCount returns the number of fields available.
	FieldCount() uint64

	// HasField reports whether the field exists; equivalent to
	// uint64(id) < FieldCount().
	HasField(id FieldID) bool

	// Descriptor returns the dimensions of a field.
	Descriptor(id FieldID) (FieldDescriptor, bool)

	// Line returns a borrowed view of a single scanline. The returned
	// slice must not be modified. Its length equals the field's width.
	Line(id FieldID, line int) ([]uint16, bool)

	// Field returns a full field materialised contiguously, row-major.
	Field(id FieldID) []uint16

	// Parameters returns the capture's video parameters, if known.
	Parameters() (Parameters, bool)

	// ParityHint returns the frame parity of a field, if known.
	ParityHint(id FieldID) (ParityHint, bool)

	// DropoutHints returns the observed dropout extents on a field.
	DropoutHints(id FieldID) []DropoutRegion

	// HasSeparateChannels reports whether luma and chroma travel in
	// separate sample lanes. When false the channel accessors fall back
	// to the combined lane unchanged.
	HasSeparateChannels() bool

	LineLuma(id FieldID, line int) ([]uint16, bool)
	LineChroma(id FieldID, line int) ([]uint16, bool)
	FieldLuma(id FieldID) []uint16
	FieldChroma(id FieldID) []uint16
}

// VBISource is implemented by representations that carry vertical blanking
// interval frame numbers (CAV picture numbers or CLV timecode equivalents).
type VBISource interface {
	// VBIFrameNumber returns the frame number recovered from a field's
	// VBI, if one was decoded.
	VBIFrameNumber(id FieldID) (int32, bool)
}

// AudioSource is implemented by representations that carry the analogue
// audio samples recovered alongside each field: interleaved 16-bit signed
// stereo at 44.1 kHz.
type AudioSource interface {
	HasAudio() bool

	// FieldAudio returns the audio samples recovered during a field.
	FieldAudio(id FieldID) []int16
}
