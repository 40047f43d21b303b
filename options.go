package pagecheck

import (
	"github.com/sirupsen/logrus"
	"github.com/tsawler/pagecheck/colormode"
)

// AnalyzeOptions holds configuration for an inspection.
type AnalyzeOptions struct {
	// Page selection (1-indexed, stored as-is)
	pages []int

	// Rendering
	popplerPath string
	workers     int
	scale       float64
	threshold   int

	logger logrus.FieldLogger
}

// defaultOptions returns the default analysis options.
func defaultOptions() AnalyzeOptions {
	return AnalyzeOptions{
		pages:     nil, // nil means all pages
		workers:   1,
		scale:     colormode.DefaultScale,
		threshold: colormode.DefaultThreshold,
	}
}

// clone creates a deep copy of AnalyzeOptions.
func (o AnalyzeOptions) clone() AnalyzeOptions {
	n := o
	if o.pages != nil {
		n.pages = make([]int, len(o.pages))
		copy(n.pages, o.pages)
	}
	return n
}
