/*
NAME
  mapping.go

DESCRIPTION
  mapping.go provides bidirectional mapping between preview image
  coordinates and field coordinates, line navigation within woven frames,
  and index conversion between output types.

AUTHORS
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
	"github.com/ausocean/orc/dag"
	"github.com/ausocean/orc/video"
)

// LineNavigation is the result of stepping one line up or down in a woven
// frame.
type LineNavigation struct {
	Valid bool
	Field video.FieldID
	Line  int
}

// ImageToField is the result of mapping an image row to field coordinates.
type ImageToField struct {
	Valid bool
	Field video.FieldID
	Line  int
}

// FieldToImage is the result of mapping field coordinates to an image row.
type FieldToImage struct {
	Valid  bool
	ImageY int
}

// FrameFieldsResult gives the two field indices composing a frame, in
// display order.
type FrameFieldsResult struct {
	Valid  bool
	First  video.FieldID
	Second video.FieldID
}

// frameGeom captures the weave geometry of one frame.
type frameGeom struct {
	top, bottom video.FieldID // Display order: top occupies even rows.
	ht, hb      int
	minH        int
	height      int
}

func frameGeometry(rep video.Representation, frame uint64, reversed bool) (frameGeom, bool) {
	top, bottom, err := framePair(rep, frame, reversed)
	if err != nil {
		return frameGeom{}, false
	}
	dt, _ := rep.Descriptor(top)
	db, _ := rep.Descriptor(bottom)
	g := frameGeom{top: top, bottom: bottom, ht: dt.Height, hb: db.Height}
	g.minH = g.ht
	if g.hb < g.minH {
		g.minH = g.hb
	}
	g.height = g.ht + g.hb
	return g, true
}

// frameImageToField maps an image row of a woven frame to field
// coordinates. Rows alternate between the two fields; when the heights
// differ by a line, the bottom image row holds the longer field's extra
// line.
func frameImageToField(rep video.Representation, frame uint64, reversed bool, y int) ImageToField {
	g, ok := frameGeometry(rep, frame, reversed)
	if !ok || y < 0 || y >= g.height {
		return ImageToField{}
	}
	if y < 2*g.minH {
		if y%2 == 0 {
			return ImageToField{Valid: true, Field: g.top, Line: y / 2}
		}
		return ImageToField{Valid: true, Field: g.bottom, Line: y / 2}
	}
	// The extra line of the longer field.
	longer := g.top
	if g.hb > g.ht {
		longer = g.bottom
	}
	return ImageToField{Valid: true, Field: longer, Line: g.minH}
}

// frameFieldToImage is the exact inverse of frameImageToField.
func frameFieldToImage(rep video.Representation, frame uint64, reversed bool, field video.FieldID, line int) FieldToImage {
	g, ok := frameGeometry(rep, frame, reversed)
	if !ok || line < 0 {
		return FieldToImage{}
	}
	switch field {
	case g.top:
		if line < g.minH {
			return FieldToImage{Valid: true, ImageY: 2 * line}
		}
		if line == g.minH && g.ht > g.hb {
			return FieldToImage{Valid: true, ImageY: g.height - 1}
		}
	case g.bottom:
		if line < g.minH {
			return FieldToImage{Valid: true, ImageY: 2*line + 1}
		}
		if line == g.minH && g.hb > g.ht {
			return FieldToImage{Valid: true, ImageY: g.height - 1}
		}
	}
	return FieldToImage{}
}

// MapImageToField converts an image row of the rendered output to the field
// and field line it displays: the inverse of weaving. For split views the
// top half maps to the first field and the bottom half to the second with
// its lines offset by the top field's height. imageHeight is accepted for
// symmetry with the GUI call site; geometry is taken from the node's data.
func (r *Renderer) MapImageToField(id dag.NodeID, t OutputType, outputIndex uint64, imageY, imageHeight int) ImageToField {
	rep, err := r.RepresentationAt(id)
	if err != nil {
		return ImageToField{}
	}
	switch t {
	case Field, Luma, Chroma:
		f := video.FieldID(outputIndex)
		desc, ok := rep.Descriptor(f)
		if !ok || imageY < 0 || imageY >= desc.Height {
			return ImageToField{}
		}
		return ImageToField{Valid: true, Field: f, Line: imageY}
	case Frame, FrameReversed:
		return frameImageToField(rep, outputIndex, t == FrameReversed, imageY)
	case Split:
		g, ok := frameGeometry(rep, outputIndex, false)
		if !ok || imageY < 0 || imageY >= g.height {
			return ImageToField{}
		}
		if imageY < g.ht {
			return ImageToField{Valid: true, Field: g.top, Line: imageY}
		}
		return ImageToField{Valid: true, Field: g.bottom, Line: imageY - g.ht}
	}
	return ImageToField{}
}

// MapFieldToImage converts field coordinates back to the image row that
// displays them: the exact inverse of MapImageToField.
func (r *Renderer) MapFieldToImage(id dag.NodeID, t OutputType, outputIndex uint64, field video.FieldID, fieldLine, imageHeight int) FieldToImage {
	rep, err := r.RepresentationAt(id)
	if err != nil {
		return FieldToImage{}
	}
	switch t {
	case Field, Luma, Chroma:
		if video.FieldID(outputIndex) != field {
			return FieldToImage{}
		}
		desc, ok := rep.Descriptor(field)
		if !ok || fieldLine < 0 || fieldLine >= desc.Height {
			return FieldToImage{}
		}
		return FieldToImage{Valid: true, ImageY: fieldLine}
	case Frame, FrameReversed:
		return frameFieldToImage(rep, outputIndex, t == FrameReversed, field, fieldLine)
	case Split:
		g, ok := frameGeometry(rep, outputIndex, false)
		if !ok || fieldLine < 0 {
			return FieldToImage{}
		}
		switch field {
		case g.top:
			if fieldLine < g.ht {
				return FieldToImage{Valid: true, ImageY: fieldLine}
			}
		case g.bottom:
			if fieldLine < g.hb {
				return FieldToImage{Valid: true, ImageY: g.ht + fieldLine}
			}
		}
	}
	return FieldToImage{}
}

// NavigateFrameLine steps one line up or down in frame mode. Moving a line
// typically toggles which field is shown; the extra line of the longer
// field at the bottom of the image is handled by mapping through image
// rows. Navigation stays within the frame: stepping past the first or last
// image row is invalid. fieldHeight is accepted for callers that track
// geometry themselves; the node's descriptors are authoritative.
func (r *Renderer) NavigateFrameLine(id dag.NodeID, t OutputType, currentField video.FieldID, currentLine, direction, fieldHeight int) LineNavigation {
	if t != Frame && t != FrameReversed {
		return LineNavigation{}
	}
	rep, err := r.RepresentationAt(id)
	if err != nil {
		return LineNavigation{}
	}
	off := frameOffset(rep)
	if uint64(currentField) < off {
		return LineNavigation{}
	}
	frame := (uint64(currentField) - off) / 2

	pos := frameFieldToImage(rep, frame, t == FrameReversed, currentField, currentLine)
	if !pos.Valid {
		return LineNavigation{}
	}
	g, _ := frameGeometry(rep, frame, t == FrameReversed)
	y := pos.ImageY + direction
	if y < 0 || y >= g.height {
		return LineNavigation{}
	}
	m := frameImageToField(rep, frame, t == FrameReversed, y)
	if !m.Valid {
		return LineNavigation{}
	}
	return LineNavigation{Valid: true, Field: m.Field, Line: m.Line}
}

// FrameFields returns the two fields composing a frame in natural display
// order, honouring the parity-derived field offset.
func (r *Renderer) FrameFields(id dag.NodeID, frame uint64) FrameFieldsResult {
	rep, err := r.RepresentationAt(id)
	if err != nil {
		return FrameFieldsResult{}
	}
	g, ok := frameGeometry(rep, frame, false)
	if !ok {
		return FrameFieldsResult{}
	}
	return FrameFieldsResult{Valid: true, First: g.top, Second: g.bottom}
}

// EquivalentIndex converts an index between output type categories: a field
// index maps to the frame containing it, a frame index to its first field.
// Conversions within a category are the identity.
func (r *Renderer) EquivalentIndex(from OutputType, fromIndex uint64, to OutputType) uint64 {
	switch {
	case isFrameKind(from) == isFrameKind(to):
		return fromIndex
	case isFrameKind(to):
		return fromIndex / 2
	default:
		return fromIndex * 2
	}
}
