// Package model defines the report types produced by page inspection.
//
// # Boxes
//
// A PDF page may define up to five rectangles ([BoxKind]): MediaBox, CropBox,
// BleedBox, TrimBox and ArtBox. Each present box is normalized into a
// [BoxRecord] in millimeters while keeping the original point-space [Rect]:
//
//	rec := model.NewBoxRecord(model.MediaBox, model.NewRect(0, 0, 595, 842), model.SourcePrimary)
//	fmt.Printf("%.1f x %.1f mm\n", rec.WidthMM, rec.HeightMM)
//
// A [BoxSet] only holds the boxes a page actually has.
//
// # Reports
//
// Analysis of a page yields a [PageReport]: its boxes, the [PaperFormat]
// derived from the MediaBox, a [ColorMode] and an ordered list of
// [DiagnosticEvent] values. A [DocumentReport] collects the page reports
// together with the mixed-format and mixed-color alerts.
//
// All enum types marshal to readable text so reports round-trip through JSON.
package model
