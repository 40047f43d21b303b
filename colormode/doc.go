// Package colormode classifies rendered pages as color or monochrome.
//
// A page is rendered at a low scale ([DefaultScale]) into a [Raster]. If the
// raster has fewer than three channels it is monochrome. Otherwise the
// largest difference between the first three channels of any single pixel
// is compared against [DefaultThreshold]: one colored pixel is enough to
// make the whole page color.
//
//	det := colormode.NewDetector()
//	mode, diags := det.Detect(ctx, renderer, 0)
//
// Rendering failures produce [model.ColorUnknown] and a Warning diagnostic.
package colormode
