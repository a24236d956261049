/*
NAME
  render.go

DESCRIPTION
  render.go provides the pixel-level rendering paths: IRE scaling of 16-bit
  samples, field and frame weaving, split views, the packed-RGB fast path
  and the dropout overlay.

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

package preview

import (
	"github.com/pkg/errors"

	"github.com/ausocean/orc/video"
)

// lane selects which sample lane of a representation to read.
type lane int

const (
	laneCombined lane = iota
	laneLuma
	laneChroma
)

func readLine(rep video.Representation, l lane, id video.FieldID, line int) ([]uint16, bool) {
	switch l {
	case laneLuma:
		return rep.LineLuma(id, line)
	case laneChroma:
		return rep.LineChroma(id, line)
	}
	return rep.Line(id, line)
}

// scaler returns the 16-bit to 8-bit display mapping for a representation:
// IRE scaling between the declared black and white code values, or an
// identity shift when parameters are missing.
func scaler(rep video.Representation) func(uint16) uint8 {
	p, ok := rep.Parameters()
	if !ok || p.White16bIRE <= p.Black16bIRE {
		return func(s uint16) uint8 { return uint8(s >> 8) }
	}
	black, white := int32(p.Black16bIRE), int32(p.White16bIRE)
	span := white - black
	return func(s uint16) uint8 {
		v := (int32(s) - black) * 255 / span
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		return uint8(v)
	}
}

// renderField renders one field as greyscale RGB888, attaching the field's
// dropout hints to the image.
func renderField(rep video.Representation, id video.FieldID, l lane) (video.PreviewImage, error) {
	desc, ok := rep.Descriptor(id)
	if !ok {
		return video.PreviewImage{}, errors.Errorf("no field %d", id)
	}
	scale := scaler(rep)
	img := video.PreviewImage{
		Width:    desc.Width,
		Height:   desc.Height,
		RGB:      make([]byte, desc.Width*desc.Height*3),
		Dropouts: rep.DropoutHints(id),
	}
	for y := 0; y < desc.Height; y++ {
		samples, ok := readLine(rep, l, id, y)
		if !ok {
			continue
		}
		row := img.RGB[y*desc.Width*3:]
		for x, s := range samples {
			v := scale(s)
			row[x*3] = v
			row[x*3+1] = v
			row[x*3+2] = v
		}
	}
	return img, nil
}

// framePair resolves the two fields of a frame in display order: the field
// shown on even image rows first. The natural order puts the first field of
// the pair on even rows; the reversed weave swaps them.
func framePair(rep video.Representation, frame uint64, reversed bool) (top, bottom video.FieldID, err error) {
	off := frameOffset(rep)
	a := video.FieldID(off + frame*2)
	b := a + 1
	if !rep.HasField(a) || !rep.HasField(b) {
		return 0, 0, errors.Errorf("no frame %d", frame)
	}
	aFirst := true
	if h, ok := rep.ParityHint(a); ok {
		aFirst = h.IsFirstField
	}
	if aFirst != reversed {
		return a, b, nil
	}
	return b, a, nil
}

// renderFrame weaves two consecutive fields onto alternating image rows.
// When the fields differ in height by a line, the longer field's extra line
// occupies the bottom row of the image.
func renderFrame(rep video.Representation, frame uint64, reversed bool) (video.PreviewImage, error) {
	top, bottom, err := framePair(rep, frame, reversed)
	if err != nil {
		return video.PreviewImage{}, err
	}
	dt, _ := rep.Descriptor(top)
	db, _ := rep.Descriptor(bottom)
	if dt.Width != db.Width {
		return video.PreviewImage{}, errors.Errorf("frame %d fields differ in width: %d vs %d", frame, dt.Width, db.Width)
	}
	w := dt.Width
	minH := dt.Height
	if db.Height < minH {
		minH = db.Height
	}
	h := dt.Height + db.Height
	scale := scaler(rep)
	img := video.PreviewImage{Width: w, Height: h, RGB: make([]byte, w*h*3)}

	put := func(y int, id video.FieldID, line int) {
		samples, ok := rep.Line(id, line)
		if !ok {
			return
		}
		row := img.RGB[y*w*3:]
		for x, s := range samples {
			v := scale(s)
			row[x*3] = v
			row[x*3+1] = v
			row[x*3+2] = v
		}
	}
	for k := 0; k < minH; k++ {
		put(2*k, top, k)
		put(2*k+1, bottom, k)
	}
	if dt.Height != db.Height {
		longer := top
		if db.Height > dt.Height {
			longer = bottom
		}
		put(h-1, longer, minH)
	}

	// Remap each field's dropouts into image rows.
	for _, id := range []video.FieldID{top, bottom} {
		for _, do := range rep.DropoutHints(id) {
			if m := frameFieldToImage(rep, frame, reversed, id, do.Line); m.Valid {
				do.Line = m.ImageY
				img.Dropouts = append(img.Dropouts, do)
			}
		}
	}
	return img, nil
}

// renderSplit stacks the two fields of a frame vertically, first field on
// top. Dropouts of the bottom field have their lines offset by the top
// field's height.
func renderSplit(rep video.Representation, frame uint64) (video.PreviewImage, error) {
	top, bottom, err := framePair(rep, frame, false)
	if err != nil {
		return video.PreviewImage{}, err
	}
	ti, err := renderField(rep, top, laneCombined)
	if err != nil {
		return video.PreviewImage{}, err
	}
	bi, err := renderField(rep, bottom, laneCombined)
	if err != nil {
		return video.PreviewImage{}, err
	}
	if ti.Width != bi.Width {
		return video.PreviewImage{}, errors.Errorf("frame %d fields differ in width", frame)
	}
	img := video.PreviewImage{
		Width:  ti.Width,
		Height: ti.Height + bi.Height,
		RGB:    append(ti.RGB, bi.RGB...),
	}
	img.Dropouts = append(img.Dropouts, ti.Dropouts...)
	for _, do := range bi.Dropouts {
		do.Line += ti.Height
		img.Dropouts = append(img.Dropouts, do)
	}
	return img, nil
}

// renderRGBFrame renders a packed-RGB representation: each field already
// holds a pre-decoded full frame of interleaved 16-bit RGB samples. No IRE
// scaling and no weaving is applied; channels shift down to 8 bits.
func renderRGBFrame(rep video.Representation, id video.FieldID) (video.PreviewImage, error) {
	desc, ok := rep.Descriptor(id)
	if !ok {
		return video.PreviewImage{}, errors.Errorf("no frame %d", id)
	}
	w := desc.Width / 3
	img := video.PreviewImage{
		Width:    w,
		Height:   desc.Height,
		RGB:      make([]byte, w*desc.Height*3),
		Dropouts: rep.DropoutHints(id),
	}
	for y := 0; y < desc.Height; y++ {
		samples, ok := rep.Line(id, y)
		if !ok {
			continue
		}
		row := img.RGB[y*w*3:]
		for i := 0; i+2 < len(samples); i += 3 {
			row[i] = uint8(samples[i] >> 8)
			row[i+1] = uint8(samples[i+1] >> 8)
			row[i+2] = uint8(samples[i+2] >> 8)
		}
	}
	return img, nil
}

// overlayDropouts blends each dropout region onto the image as a red line:
// 75% red, 25% underlying.
func overlayDropouts(img *video.PreviewImage) {
	for _, do := range img.Dropouts {
		if do.Line < 0 || do.Line >= img.Height {
			continue
		}
		row := img.RGB[do.Line*img.Width*3:]
		for x := do.StartSample; x < do.EndSample && x < img.Width; x++ {
			if x < 0 {
				continue
			}
			row[x*3] = 191 + row[x*3]/4
			row[x*3+1] = row[x*3+1] / 4
			row[x*3+2] = row[x*3+2] / 4
		}
	}
}
