/*
NAME
  image.go

DESCRIPTION
  image.go provides the rendered preview image wire shape handed across the
  GUI boundary.

AUTHORS
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package video

// VectorscopePoint is one UV scatter sample of a chroma preview.
type VectorscopePoint struct {
	U, V float32
}

// PreviewImage is a rendered RGB888 image. RGB holds exactly
// Width*Height*3 bytes, row-major. Dropouts carries the dropout regions of
// the rendered item mapped to image coordinates, whether or not they were
// blended onto the pixels.
type PreviewImage struct {
	Width       int
	Height      int
	RGB         []byte
	Vectorscope []VectorscopePoint
	Dropouts    []DropoutRegion
}

// Valid reports whether the image holds a complete RGB888 buffer.
func (im PreviewImage) Valid() bool {
	return len(im.RGB) != 0 && len(im.RGB) == im.Width*im.Height*3
}
