/*
NAME
  placeholder.go

DESCRIPTION
  placeholder.go renders the text image shown when no node output is
  available for preview.

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
	"image/color"
	"image/draw"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ausocean/orc/video"
)

// Placeholder image geometry.
const (
	placeholderWidth  = 640
	placeholderHeight = 480
	placeholderPts    = 18
)

var placeholderFont *truetype.Font

func init() {
	// goregular ships with x/image; parse failure would be a build
	// defect, not a runtime condition.
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		panic("preview: could not parse placeholder font: " + err.Error())
	}
	placeholderFont = f
}

// placeholderImage renders a dark image with the given message centred
// left, used for the reserved "no preview" node.
func placeholderImage(message string) video.PreviewImage {
	rgba := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.RGBA{R: 24, G: 24, B: 24, A: 255}), image.Point{}, draw.Src)

	ctx := freetype.NewContext()
	ctx.SetFont(placeholderFont)
	ctx.SetFontSize(placeholderPts)
	ctx.SetClip(rgba.Bounds())
	ctx.SetDst(rgba)
	ctx.SetSrc(image.NewUniform(color.RGBA{R: 200, G: 200, B: 200, A: 255}))
	// Best effort; an undrawn message still yields a valid image.
	ctx.DrawString(message, freetype.Pt(16, placeholderHeight/2))

	img := video.PreviewImage{
		Width:  placeholderWidth,
		Height: placeholderHeight,
		RGB:    make([]byte, placeholderWidth*placeholderHeight*3),
	}
	for y := 0; y < placeholderHeight; y++ {
		for x := 0; x < placeholderWidth; x++ {
			c := rgba.RGBAAt(x, y)
			i := (y*placeholderWidth + x) * 3
			img.RGB[i] = c.R
			img.RGB[i+1] = c.G
			img.RGB[i+2] = c.B
		}
	}
	return img
}
