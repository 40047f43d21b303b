package model

import "time"

// DocumentReport is the result of one analysis run. Each run produces a new
// report; reports are never updated in place.
type DocumentReport struct {
	Filename         string            `json:"filename,omitempty"`
	PageCount        int               `json:"page_count"`
	Pages            []*PageReport     `json:"pages"`
	MixedFormatAlert bool              `json:"mixed_format_alert"`
	MixedColorAlert  bool              `json:"mixed_color_alert"`
	Diagnostics      []DiagnosticEvent `json:"global_diagnostics"`
	AnalyzedAt       time.Time         `json:"analyzed_at"`
}

// GetPage returns a page report by number (1-indexed)
func (d *DocumentReport) GetPage(number int) *PageReport {
	for _, p := range d.Pages {
		if p.Number() == number {
			return p
		}
	}
	return nil
}

// Formats returns the distinct format keys in first-seen order.
// Pages without a known format are skipped.
func (d *DocumentReport) Formats() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, p := range d.Pages {
		if p.Format == nil {
			continue
		}
		k := p.Format.Key()
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

// CountColor returns how many pages were classified as mode.
func (d *DocumentReport) CountColor(mode ColorMode) int {
	n := 0
	for _, p := range d.Pages {
		if p.Color == mode {
			n++
		}
	}
	return n
}

// AllDiagnostics returns the global events followed by each page's events,
// in page order.
func (d *DocumentReport) AllDiagnostics() []DiagnosticEvent {
	out := append([]DiagnosticEvent(nil), d.Diagnostics...)
	for _, p := range d.Pages {
		out = append(out, p.Diagnostics...)
	}
	return out
}
