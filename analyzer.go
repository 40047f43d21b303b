package pagecheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/pagecheck/boxes"
	"github.com/tsawler/pagecheck/colormode"
	"github.com/tsawler/pagecheck/format"
	"github.com/tsawler/pagecheck/model"
	"github.com/tsawler/pagecheck/paper"
	"github.com/tsawler/pagecheck/poppler"
	"github.com/tsawler/pagecheck/reader"
	"golang.org/x/sync/errgroup"
)

// ErrDocumentOpen is returned when the primary source cannot open the input.
// No report is produced in that case.
var ErrDocumentOpen = errors.New("failed to open document")

// ErrPageRange is returned for a page selection outside the document.
var ErrPageRange = errors.New("page out of range")

// Document is the primary page-box source.
type Document interface {
	PageCount() int
	// PageSource loads the page at a 0-based index.
	PageSource(index int) (boxes.Source, error)
}

// RasterSource is the secondary source. It renders pages for color
// detection and supplies the MediaBox fallback.
type RasterSource interface {
	colormode.Renderer
	boxes.RectSource
	PageCount() int
}

// Analyzer builds page and document reports. The zero value is usable.
type Analyzer struct {
	// Workers bounds how many pages are rendered concurrently. Values
	// below 2 render sequentially.
	Workers int
	// Scale and Threshold configure color detection; zero means default.
	Scale     float64
	Threshold int
	// Poppler opens the rendering source in AnalyzeFile. Defaults to
	// poppler tools found on PATH.
	Poppler *poppler.Client
	Logger  logrus.FieldLogger
}

// NewAnalyzer creates an Analyzer with default settings
func NewAnalyzer() *Analyzer {
	return &Analyzer{Workers: 1, Scale: colormode.DefaultScale, Threshold: colormode.DefaultThreshold}
}

func (a *Analyzer) logger() logrus.FieldLogger {
	if a.Logger != nil {
		return a.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (a *Analyzer) detector() *colormode.Detector {
	d := colormode.NewDetector()
	if a.Scale > 0 {
		d.Scale = a.Scale
	}
	if a.Threshold > 0 {
		d.Threshold = a.Threshold
	}
	d.Logger = a.Logger
	return d
}

func (a *Analyzer) extractor(raster RasterSource) *boxes.Extractor {
	e := boxes.NewExtractor(nil)
	if raster != nil {
		e.Fallback = raster
	}
	e.Logger = a.Logger
	return e
}

// Analyze inspects the selected pages of doc. pages holds 1-indexed page
// numbers; nil selects every page. raster may be nil, in which case every
// page's color is Unknown and no MediaBox fallback is attempted.
// Problems with individual pages are recorded as diagnostics and never
// returned as errors.
func (a *Analyzer) Analyze(ctx context.Context, doc Document, raster RasterSource, pages []int) (*model.DocumentReport, error) {
	return a.analyze(ctx, "", doc, raster, pages, nil)
}

func (a *Analyzer) analyze(ctx context.Context, name string, doc Document, raster RasterSource, pages []int, global []model.DiagnosticEvent) (*model.DocumentReport, error) {
	log := a.logger()
	if name != "" {
		log = log.WithField("file", name)
	}

	count := doc.PageCount()
	indexes, err := selectPages(pages, count)
	if err != nil {
		return nil, err
	}

	report := &model.DocumentReport{
		Filename:    name,
		PageCount:   count,
		Diagnostics: global,
		AnalyzedAt:  time.Now(),
	}

	if raster != nil && raster.PageCount() != count {
		d := model.Warningf("page count mismatch: primary source reports %d, rendering source reports %d", count, raster.PageCount())
		log.Warn(d.Message)
		report.Diagnostics = append(report.Diagnostics, d)
	}

	report.Pages = make([]*model.PageReport, len(indexes))
	ext := a.extractor(raster)
	for i, idx := range indexes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.Pages[i] = a.geometry(ctx, ext, doc, idx)
	}

	if err := a.colors(ctx, raster, report.Pages); err != nil {
		return nil, err
	}

	a.alerts(report)

	log.WithFields(logrus.Fields{
		"pages":        len(report.Pages),
		"mixed_format": report.MixedFormatAlert,
		"mixed_color":  report.MixedColorAlert,
	}).Info("analysis complete")

	return report, nil
}

// AnalyzePage inspects a single page at a 0-based index.
func (a *Analyzer) AnalyzePage(ctx context.Context, doc Document, raster RasterSource, index int) (*model.PageReport, error) {
	if index < 0 || index >= doc.PageCount() {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageRange, index+1, doc.PageCount())
	}

	page := a.geometry(ctx, a.extractor(raster), doc, index)
	if err := a.colors(ctx, raster, []*model.PageReport{page}); err != nil {
		return nil, err
	}
	return page, nil
}

// geometry runs the box pipeline for one page and classifies its format.
func (a *Analyzer) geometry(ctx context.Context, ext *boxes.Extractor, doc Document, index int) *model.PageReport {
	log := a.logger().WithField("page", index+1)

	page := &model.PageReport{Index: index}
	page.Diagnostics = append(page.Diagnostics, model.Infof("began analyzing page %d", index+1))
	log.Debug("began analyzing page")

	src, err := loadPage(doc, index)
	if err != nil {
		d := model.Warningf("failed to load page %d: %v", index+1, err)
		log.WithError(err).Warn("failed to load page")
		page.Diagnostics = append(page.Diagnostics, d)
		src = nil
	}

	set, diags := ext.Extract(ctx, src, index)
	page.Boxes = set
	page.Diagnostics = append(page.Diagnostics, diags...)

	media, ok := set.Get(model.MediaBox)
	if !ok {
		d := model.Warningf("could not determine page format for page %d", index+1)
		log.Warn("could not determine page format")
		page.Diagnostics = append(page.Diagnostics, d)
		return page
	}

	f := paper.Classify(media.WidthMM, media.HeightMM)
	page.Format = &f
	log.Debugf("classified as %s", f.Key())
	return page
}

// loadPage guards against sources that panic on malformed page trees.
func loadPage(doc Document, index int) (src boxes.Source, err error) {
	defer func() {
		if r := recover(); r != nil {
			src, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return doc.PageSource(index)
}

// colors runs the color pipeline. Each result is written to its own page,
// so completion order does not affect report order.
func (a *Analyzer) colors(ctx context.Context, raster RasterSource, pages []*model.PageReport) error {
	det := a.detector()
	var r colormode.Renderer
	if raster != nil {
		r = raster
	}

	detect := func(p *model.PageReport) {
		mode, diags := det.Detect(ctx, r, p.Index)
		p.Color = mode
		p.Diagnostics = append(p.Diagnostics, diags...)
	}

	if a.Workers < 2 || len(pages) < 2 {
		for _, p := range pages {
			if err := ctx.Err(); err != nil {
				return err
			}
			detect(p)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Workers)
	for _, p := range pages {
		p := p // per-iteration copy; go.mod targets go 1.21 (pre-1.22 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			detect(p)
			return nil
		})
	}
	return g.Wait()
}

// alerts computes the document-level flags after every page is done.
func (a *Analyzer) alerts(report *model.DocumentReport) {
	log := a.logger()

	if formats := report.Formats(); len(formats) > 1 {
		report.MixedFormatAlert = true
		d := model.Warningf("document contains mixed page formats: %s", strings.Join(formats, ", "))
		log.Warn(d.Message)
		report.Diagnostics = append(report.Diagnostics, d)
	}

	if report.CountColor(model.ColorColor) > 0 && report.CountColor(model.ColorMonochrome) > 0 {
		report.MixedColorAlert = true
		d := model.Infof("document contains both color and monochrome pages")
		log.Info(d.Message)
		report.Diagnostics = append(report.Diagnostics, d)
	}
}

// selectPages converts 1-indexed page numbers to sorted-as-given 0-based
// indexes, dropping duplicates. nil selects every page.
func selectPages(pages []int, count int) ([]int, error) {
	if pages == nil {
		out := make([]int, count)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}

	seen := make(map[int]bool, len(pages))
	out := make([]int, 0, len(pages))
	for _, n := range pages {
		if n < 1 || n > count {
			return nil, fmt.Errorf("%w: page %d of %d", ErrPageRange, n, count)
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n-1)
	}
	return out, nil
}

// AnalyzeFile opens path with both sources, analyzes the selected pages and
// releases both sources before returning. Only a failure of the primary
// source is fatal; without a rendering source colors are Unknown.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, pages []int) (*model.DocumentReport, error) {
	s, err := a.open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	return a.analyze(ctx, filepath.Base(path), s.doc, s.raster, pages, s.diags)
}

// AnalyzePageFile is the single-page counterpart of AnalyzeFile. number is
// 1-indexed.
func (a *Analyzer) AnalyzePageFile(ctx context.Context, path string, number int) (*model.PageReport, error) {
	s, err := a.open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	page, err := a.AnalyzePage(ctx, s.doc, s.raster, number-1)
	if err != nil {
		return nil, err
	}
	if s.rasterErr != nil {
		page.Diagnostics = append(page.Diagnostics, s.diags[len(s.diags)-1])
	}
	return page, nil
}

// sources holds both opened views of one file.
type sources struct {
	doc       *readerDocument
	raster    RasterSource
	poppler   *poppler.Document
	rasterErr error
	diags     []model.DiagnosticEvent
}

func (s *sources) Close() {
	if s.poppler != nil {
		s.poppler.Close()
	}
	if s.doc != nil {
		s.doc.r.Close()
	}
}

func (a *Analyzer) open(ctx context.Context, path string) (*sources, error) {
	name := filepath.Base(path)
	log := a.logger().WithField("file", name)

	f, err := format.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocumentOpen, err)
	}
	if f != format.PDF {
		return nil, fmt.Errorf("%w: %s is not a PDF", ErrDocumentOpen, name)
	}

	r, err := reader.Open(path)
	if err != nil {
		log.WithError(err).Error("failed to open document")
		return nil, fmt.Errorf("%w: %w", ErrDocumentOpen, err)
	}

	s := &sources{doc: &readerDocument{r: r}}
	s.diags = append(s.diags, model.Infof("analyzing file %s", name))
	log.Info("analyzing file")

	client := poppler.New("")
	if a.Poppler != nil {
		c := *a.Poppler
		client = &c
	}
	if client.Logger == nil {
		client.Logger = a.Logger
	}

	pd, err := client.Open(ctx, path)
	if err != nil {
		s.rasterErr = err
		d := model.Warningf("rendering source unavailable, page colors will be Unknown: %v", err)
		log.WithError(err).Warn("rendering source unavailable")
		s.diags = append(s.diags, d)
		return s, nil
	}
	s.poppler = pd
	s.raster = pd
	return s, nil
}

// readerDocument adapts reader.Reader to Document.
type readerDocument struct {
	r *reader.Reader
}

// FromReader wraps an opened reader as a Document.
func FromReader(r *reader.Reader) Document {
	return &readerDocument{r: r}
}

func (d *readerDocument) PageCount() int {
	return d.r.PageCount()
}

func (d *readerDocument) PageSource(index int) (boxes.Source, error) {
	p, err := d.r.Page(index)
	if err != nil {
		return nil, err
	}
	return p, nil
}
