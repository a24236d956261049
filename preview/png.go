/*
NAME
  png.go

DESCRIPTION
  png.go provides PNG export of rendered preview images.

AUTHORS
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package preview

import (
	"image"
	"image/png"
	"os"

	"github.com/pkg/errors"

	"github.com/ausocean/orc/dag"
	"github.com/ausocean/orc/stage"
	"github.com/ausocean/orc/video"
)

// SavePNG renders one output of a node and writes it to a PNG file.
func (r *Renderer) SavePNG(id dag.NodeID, t OutputType, index uint64, filename, optionID string) error {
	res := r.RenderOutput(id, t, index, optionID, stage.Random)
	if !res.Success {
		return errors.Errorf("could not render node %d: %s", id, res.Err)
	}
	return r.SavePNGImage(res.Image, filename)
}

// SavePNGImage writes a rendered image to a PNG file.
func (r *Renderer) SavePNGImage(img video.PreviewImage, filename string) error {
	if !img.Valid() {
		return errors.New("invalid preview image")
	}
	rgba := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			src := (y*img.Width + x) * 3
			dst := y*rgba.Stride + x*4
			rgba.Pix[dst] = img.RGB[src]
			rgba.Pix[dst+1] = img.RGB[src+1]
			rgba.Pix[dst+2] = img.RGB[src+2]
			rgba.Pix[dst+3] = 0xff
		}
	}
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "could not create PNG file")
	}
	defer f.Close()
	if err := png.Encode(f, rgba); err != nil {
		return errors.Wrap(err, "could not encode PNG")
	}
	return nil
}
