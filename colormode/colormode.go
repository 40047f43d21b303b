package colormode

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/pagecheck/model"
)

const (
	// DefaultScale renders at 72/150 of native resolution. Classification
	// does not depend on fine detail, so a coarse raster is enough.
	DefaultScale = 72.0 / 150.0

	// DefaultThreshold is the channel difference (0-255) a pixel must
	// exceed for the page to count as color.
	DefaultThreshold = 30
)

// Renderer renders one page to a pixel buffer.
type Renderer interface {
	RenderPage(ctx context.Context, pageIndex int, scale float64) (*Raster, error)
}

// RenderError reports a page that could not be rendered for classification.
type RenderError struct {
	Page int // 1-indexed
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering page %d: %v", e.Page, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Detector classifies pages as color or monochrome.
type Detector struct {
	Scale     float64
	Threshold int
	Logger    logrus.FieldLogger
}

// NewDetector creates a Detector with the default scale and threshold
func NewDetector() *Detector {
	return &Detector{Scale: DefaultScale, Threshold: DefaultThreshold}
}

func (d *Detector) logger() logrus.FieldLogger {
	if d.Logger != nil {
		return d.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Detect renders the page at a low resolution and classifies it. Any
// rendering problem yields ColorUnknown and a Warning; it is never returned
// as an error.
func (d *Detector) Detect(ctx context.Context, r Renderer, pageIndex int) (model.ColorMode, []model.DiagnosticEvent) {
	log := d.logger().WithField("page", pageIndex+1)

	mode, err := d.detect(ctx, r, pageIndex)
	if err != nil {
		log.WithError(err).Warn("color detection failed")
		return model.ColorUnknown, []model.DiagnosticEvent{
			model.Warningf("failed to detect color on page %d: %v", pageIndex+1, err),
		}
	}

	log.Debugf("classified as %s", mode)
	return mode, nil
}

func (d *Detector) detect(ctx context.Context, r Renderer, pageIndex int) (mode model.ColorMode, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &RenderError{Page: pageIndex + 1, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	if r == nil {
		return model.ColorUnknown, &RenderError{Page: pageIndex + 1, Err: fmt.Errorf("no renderer available")}
	}

	scale := d.Scale
	if scale <= 0 {
		scale = DefaultScale
	}

	raster, err := r.RenderPage(ctx, pageIndex, scale)
	if err != nil {
		return model.ColorUnknown, &RenderError{Page: pageIndex + 1, Err: err}
	}

	mode, err = Classify(raster, d.Threshold)
	if err != nil {
		return model.ColorUnknown, &RenderError{Page: pageIndex + 1, Err: err}
	}
	return mode, nil
}

// Classify returns ColorColor if any single pixel has a channel difference
// above threshold, ColorMonochrome otherwise. Rasters with fewer than three
// channels are monochrome without sampling.
func Classify(r *Raster, threshold int) (model.ColorMode, error) {
	if err := r.Validate(); err != nil {
		return model.ColorUnknown, err
	}
	if r.Channels < 3 {
		return model.ColorMonochrome, nil
	}
	if MaxChannelDifference(r) > threshold {
		return model.ColorColor, nil
	}
	return model.ColorMonochrome, nil
}

// MaxChannelDifference returns the largest |R-G|, |R-B| or |G-B| found in
// any pixel, using the first three channels. It returns 0 for rasters with
// fewer than three channels. The raster must be valid.
func MaxChannelDifference(r *Raster) int {
	if r.Channels < 3 {
		return 0
	}

	maxDiff := 0
	rowBytes := r.Width * r.Channels
	for y := 0; y < r.Height; y++ {
		row := r.Pix[y*r.Stride : y*r.Stride+rowBytes]
		for i := 0; i < rowBytes; i += r.Channels {
			c0, c1, c2 := int(row[i]), int(row[i+1]), int(row[i+2])
			if d := abs(c0 - c1); d > maxDiff {
				maxDiff = d
			}
			if d := abs(c0 - c2); d > maxDiff {
				maxDiff = d
			}
			if d := abs(c1 - c2); d > maxDiff {
				maxDiff = d
			}
		}
		if maxDiff == 255 {
			break
		}
	}
	return maxDiff
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
