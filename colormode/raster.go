package colormode

import (
	"fmt"
	"image"
	"image/color"
)

// Raster is a decoded pixel buffer. Row y starts at Pix[y*Stride]; each
// pixel occupies Channels consecutive bytes. Stride may include padding.
type Raster struct {
	Width    int
	Height   int
	Stride   int
	Channels int
	Pix      []byte
}

// Validate checks that the buffer is large enough for its dimensions.
func (r *Raster) Validate() error {
	if r == nil {
		return fmt.Errorf("nil raster")
	}
	if r.Width < 0 || r.Height < 0 || r.Channels <= 0 {
		return fmt.Errorf("invalid raster geometry %dx%d with %d channels", r.Width, r.Height, r.Channels)
	}
	if r.Width == 0 || r.Height == 0 {
		return nil
	}
	if r.Stride < r.Width*r.Channels {
		return fmt.Errorf("stride %d shorter than row of %d bytes", r.Stride, r.Width*r.Channels)
	}
	need := (r.Height-1)*r.Stride + r.Width*r.Channels
	if len(r.Pix) < need {
		return fmt.Errorf("pixel buffer has %d bytes, need %d", len(r.Pix), need)
	}
	return nil
}

// FromImage converts a decoded image into a Raster. Gray images keep a
// single channel so they classify as monochrome without sampling; CMYK
// keeps its four device channels; everything else becomes 8-bit RGBA.
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch m := img.(type) {
	case *image.Gray:
		return &Raster{Width: w, Height: h, Stride: m.Stride, Channels: 1, Pix: m.Pix[m.PixOffset(b.Min.X, b.Min.Y):]}
	case *image.Gray16:
		pix := make([]byte, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				pix[y*w+x] = uint8(m.Gray16At(b.Min.X+x, b.Min.Y+y).Y >> 8)
			}
		}
		return &Raster{Width: w, Height: h, Stride: w, Channels: 1, Pix: pix}
	case *image.RGBA:
		return &Raster{Width: w, Height: h, Stride: m.Stride, Channels: 4, Pix: m.Pix[m.PixOffset(b.Min.X, b.Min.Y):]}
	case *image.NRGBA:
		return &Raster{Width: w, Height: h, Stride: m.Stride, Channels: 4, Pix: m.Pix[m.PixOffset(b.Min.X, b.Min.Y):]}
	case *image.CMYK:
		return &Raster{Width: w, Height: h, Stride: m.Stride, Channels: 4, Pix: m.Pix[m.PixOffset(b.Min.X, b.Min.Y):]}
	}

	pix := make([]byte, w*h*4)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
			i += 4
		}
	}
	return &Raster{Width: w, Height: h, Stride: w * 4, Channels: 4, Pix: pix}
}
