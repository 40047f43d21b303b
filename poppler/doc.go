// Package poppler renders PDF pages with the poppler command line tools.
//
// It is the secondary, rendering-capable page source: pdfinfo supplies the
// page count and rendered page rectangles (used as the MediaBox fallback),
// and pdftoppm renders pages to TIFF, decoded with golang.org/x/image/tiff.
//
//	client := poppler.New("")  // tools from $PATH
//	doc, err := client.Open(ctx, "document.pdf")
//	if err != nil {
//	    return err
//	}
//	defer doc.Close()
//
//	raster, err := doc.RenderPage(ctx, 0, colormode.DefaultScale)
//
// [Document] implements colormode.Renderer and boxes.RectSource.
package poppler
