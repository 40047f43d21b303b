// Package boxes extracts the standard page boxes from a page description.
//
// A page source implements [Source], a small capability interface with one
// presence test and one read per [model.BoxKind]. The [Extractor] walks the
// five kinds, converts each rectangle from points to millimeters and records
// problems as diagnostics instead of failing:
//
//	ext := boxes.NewExtractor(renderer) // renderer may be nil
//	set, diags := ext.Extract(ctx, pageSource, 0)
//
// When a page has no MediaBox and a [RectSource] fallback is configured, the
// rendered page rectangle is used with its origin forced to (0, 0) and the
// record is tagged [model.SourceFallback]. The other boxes have no fallback.
package boxes
