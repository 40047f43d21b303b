// Package pagecheck reports, for every page of a PDF, its page boxes, its
// paper format and orientation, and whether it prints in color.
//
// Basic usage:
//
//	report, err := pagecheck.Open("document.pdf").Analyze(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if report.MixedFormatAlert {
//	    log.Println("pages differ in size:", report.Formats())
//	}
//
// With options:
//
//	report, err := pagecheck.Open("scan.pdf").
//	    Pages(1, 2, 3).
//	    Workers(4).
//	    PopplerPath("/opt/poppler/bin").
//	    Analyze(ctx)
//
// For finer control, construct an Analyzer and pass it any Document and
// RasterSource implementation.
package pagecheck

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/pagecheck/model"
	"github.com/tsawler/pagecheck/poppler"
	"github.com/tsawler/pagecheck/reader"
)

// Inspection is a fluent, immutable description of one analysis.
// Each configuration method returns a new Inspection.
type Inspection struct {
	filename string
	options  AnalyzeOptions
	err      error
}

// Open returns an Inspection of filename. Nothing is read until a terminal
// operation such as Analyze is called.
//
// Example:
//
//	report, err := pagecheck.Open("document.pdf").Analyze(ctx)
func Open(filename string) *Inspection {
	return &Inspection{filename: filename, options: defaultOptions()}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := pagecheck.Must(pagecheck.Open("document.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

func (i *Inspection) clone() *Inspection {
	return &Inspection{filename: i.filename, options: i.options.clone(), err: i.err}
}

// Pages restricts the analysis to the given pages (1-indexed).
// Multiple calls are cumulative.
func (i *Inspection) Pages(pages ...int) *Inspection {
	n := i.clone()
	n.options.pages = append(n.options.pages, pages...)
	return n
}

// PageRange restricts the analysis to pages start through end, inclusive.
func (i *Inspection) PageRange(start, end int) *Inspection {
	n := i.clone()
	if start > end {
		n.err = fmt.Errorf("invalid page range %d-%d", start, end)
		return n
	}
	for p := start; p <= end; p++ {
		n.options.pages = append(n.options.pages, p)
	}
	return n
}

// Workers sets how many pages are rendered concurrently.
func (i *Inspection) Workers(workers int) *Inspection {
	n := i.clone()
	n.options.workers = workers
	return n
}

// PopplerPath sets the directory holding pdfinfo and pdftoppm.
func (i *Inspection) PopplerPath(dir string) *Inspection {
	n := i.clone()
	n.options.popplerPath = dir
	return n
}

// Scale sets the rendering scale used for color detection.
func (i *Inspection) Scale(scale float64) *Inspection {
	n := i.clone()
	n.options.scale = scale
	return n
}

// Threshold sets the channel difference above which a pixel counts as color.
func (i *Inspection) Threshold(threshold int) *Inspection {
	n := i.clone()
	n.options.threshold = threshold
	return n
}

// Logger sets the logger that receives every diagnostic.
func (i *Inspection) Logger(l logrus.FieldLogger) *Inspection {
	n := i.clone()
	n.options.logger = l
	return n
}

func (i *Inspection) analyzer() *Analyzer {
	p := poppler.New(i.options.popplerPath)
	p.Logger = i.options.logger
	return &Analyzer{
		Workers:   i.options.workers,
		Scale:     i.options.scale,
		Threshold: i.options.threshold,
		Poppler:   p,
		Logger:    i.options.logger,
	}
}

// Analyze runs the analysis and returns the document report.
func (i *Inspection) Analyze(ctx context.Context) (*model.DocumentReport, error) {
	if i.err != nil {
		return nil, i.err
	}
	if i.filename == "" {
		return nil, fmt.Errorf("no filename specified")
	}
	return i.analyzer().AnalyzeFile(ctx, i.filename, i.options.pages)
}

// Page analyzes a single page (1-indexed).
func (i *Inspection) Page(ctx context.Context, number int) (*model.PageReport, error) {
	if i.err != nil {
		return nil, i.err
	}
	if i.filename == "" {
		return nil, fmt.Errorf("no filename specified")
	}
	return i.analyzer().AnalyzePageFile(ctx, i.filename, number)
}

// PageCount returns the number of pages according to the primary source.
func (i *Inspection) PageCount() (int, error) {
	if i.err != nil {
		return 0, i.err
	}
	r, err := reader.Open(i.filename)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDocumentOpen, err)
	}
	defer r.Close()
	return r.PageCount(), nil
}

// ParsePages parses a page selection such as "1,3,5-7" into 1-indexed page
// numbers. An empty string selects every page and returns nil.
func ParsePages(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		end := start
		if isRange {
			if end, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
		}
		if start < 1 || end < start {
			return nil, fmt.Errorf("invalid page range %q", part)
		}
		for p := start; p <= end; p++ {
			pages = append(pages, p)
		}
	}
	return pages, nil
}
