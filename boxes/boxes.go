package boxes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/pagecheck/model"
)

// RawRect is a box rectangle [x1 y1 x2 y2] exactly as the page source
// stores it. Elements may be any integer or floating type, or an exact
// decimal exposing Float64() (float64, bool) such as *big.Rat.
type RawRect [4]any

// Source gives access to the boxes of a single page.
type Source interface {
	// HasBox reports whether the page defines kind (directly or inherited).
	HasBox(kind model.BoxKind) bool
	// ReadBox returns the rectangle stored for kind.
	ReadBox(kind model.BoxKind) (RawRect, error)
}

// RectSource supplies the rendered page rectangle of a page, in points.
// It is used only when the page description has no usable MediaBox.
type RectSource interface {
	PageRect(ctx context.Context, pageIndex int) (width, height float64, err error)
}

// DecodeError reports a box that was present but could not be read.
type DecodeError struct {
	Kind model.BoxKind
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ErrNotNumeric is returned when a coordinate is not a number.
var ErrNotNumeric = errors.New("coordinate is not numeric")

// decimal is satisfied by exact decimal representations (*big.Rat and
// common fixed-point decimal types).
type decimal interface {
	Float64() (float64, bool)
}

// Extractor reads the five standard boxes of a page.
type Extractor struct {
	// Fallback supplies MediaBox dimensions when the page has none. May be nil.
	Fallback RectSource
	// Logger receives a copy of every diagnostic. Defaults to a discarding logger.
	Logger logrus.FieldLogger
}

// NewExtractor creates an Extractor with the given fallback source
func NewExtractor(fallback RectSource) *Extractor {
	return &Extractor{Fallback: fallback}
}

func (e *Extractor) logger() logrus.FieldLogger {
	if e.Logger != nil {
		return e.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Extract reads every box kind from src. A box that is absent is skipped
// silently; a box that fails to decode is skipped with a Warning. It never
// fails as a whole. src may be nil when the page could not be loaded.
func (e *Extractor) Extract(ctx context.Context, src Source, pageIndex int) (model.BoxSet, []model.DiagnosticEvent) {
	set := make(model.BoxSet)
	var diags []model.DiagnosticEvent
	log := e.logger().WithField("page", pageIndex+1)

	if src == nil {
		d := model.Warningf("page %d has no readable page description", pageIndex+1)
		log.Warn(d.Message)
		diags = append(diags, d)
	} else {
		for _, kind := range model.AllBoxKinds() {
			rec, ok, err := readRecord(src, kind)
			if err != nil {
				d := model.Warningf("failed to read %s on page %d: %v", kind, pageIndex+1, err)
				log.WithError(err).Warnf("failed to read %s", kind)
				diags = append(diags, d)
				continue
			}
			if ok {
				set[kind] = rec
			}
		}
	}

	if set.Has(model.MediaBox) || e.Fallback == nil {
		return set, diags
	}

	w, h, err := e.Fallback.PageRect(ctx, pageIndex)
	if err != nil {
		d := model.Warningf("fallback page rectangle unavailable for page %d: %v", pageIndex+1, err)
		log.WithError(err).Warn("fallback page rectangle unavailable")
		return set, append(diags, d)
	}

	set[model.MediaBox] = model.NewBoxRecord(model.MediaBox, model.NewRect(0, 0, w, h), model.SourceFallback)
	d := model.Infof("using fallback page rectangle for MediaBox on page %d", pageIndex+1)
	log.Info(d.Message)
	return set, append(diags, d)
}

// readRecord reads one box. ok is false when the box is simply absent.
func readRecord(src Source, kind model.BoxKind) (rec model.BoxRecord, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &DecodeError{Kind: kind, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if !src.HasBox(kind) {
		return model.BoxRecord{}, false, nil
	}

	raw, err := src.ReadBox(kind)
	if err != nil {
		return model.BoxRecord{}, false, &DecodeError{Kind: kind, Err: err}
	}

	rect, err := ToRect(raw)
	if err != nil {
		return model.BoxRecord{}, false, &DecodeError{Kind: kind, Err: err}
	}

	return model.NewBoxRecord(kind, rect, model.SourcePrimary), true, nil
}

// ToRect coerces the four coordinates of raw to float64.
func ToRect(raw RawRect) (model.Rect, error) {
	var c [4]float64
	for i, v := range raw {
		f, err := ToFloat(v)
		if err != nil {
			return model.Rect{}, fmt.Errorf("element %d: %w", i, err)
		}
		c[i] = f
	}
	return model.NewRect(c[0], c[1], c[2], c[3]), nil
}

// ToFloat converts a numeric coordinate to float64. Strings are rejected:
// a coordinate must already be a number in the page description.
func ToFloat(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case int16:
		f = float64(n)
	case int8:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint64:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint8:
		f = float64(n)
	case decimal:
		f, _ = n.Float64()
	case nil:
		return 0, fmt.Errorf("%w: null", ErrNotNumeric)
	default:
		return 0, fmt.Errorf("%w: %T", ErrNotNumeric, v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrNotNumeric, f)
	}
	return f, nil
}
