// Package reader provides access to page dictionaries of a PDF file.
//
// It is the primary source of page boxes. Parsing is delegated to
// github.com/ledongthuc/pdf; this package adds page-tree inheritance for
// MediaBox and CropBox and turns malformed objects into errors instead of
// panics.
//
//	r, err := reader.Open("document.pdf")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	page, err := r.Page(0)  // 0-indexed
//	if page.HasBox(model.TrimBox) {
//	    raw, err := page.ReadBox(model.TrimBox)
//	}
//
// [Page] implements boxes.Source.
package reader
