package poppler

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/pagecheck/colormode"
	"golang.org/x/image/tiff"
)

// MaxBulkPreviews caps how many pages Previews renders.
const MaxBulkPreviews = 10

// Document is a PDF opened for rendering. It is safe for concurrent use.
type Document struct {
	client    *Client
	path      string
	pageCount int
	tmpDir    string
	seq       atomic.Int64

	sizesOnce sync.Once
	sizes     map[int][2]float64
	sizesErr  error
}

// Open checks that path can be read by poppler and returns a Document.
// The Document must be closed to remove its scratch directory.
func (c *Client) Open(ctx context.Context, path string) (*Document, error) {
	out, err := c.run(ctx, pdfinfoBin, path)
	if err != nil {
		return nil, err
	}

	count, err := parsePageCount(string(out))
	if err != nil {
		return nil, err
	}

	tmp, err := os.MkdirTemp("", "pagecheck-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	c.logger().WithFields(logrus.Fields{"file": filepath.Base(path), "pages": count}).Debug("opened document for rendering")

	return &Document{client: c, path: path, pageCount: count, tmpDir: tmp}, nil
}

// Close removes the scratch directory
func (d *Document) Close() error {
	if d.tmpDir == "" {
		return nil
	}
	err := os.RemoveAll(d.tmpDir)
	d.tmpDir = ""
	return err
}

// PageCount returns the number of pages reported by pdfinfo
func (d *Document) PageCount() int {
	return d.pageCount
}

func (d *Document) checkIndex(pageIndex int) error {
	if pageIndex < 0 || pageIndex >= d.pageCount {
		return fmt.Errorf("page index %d out of range [0, %d)", pageIndex, d.pageCount)
	}
	return nil
}

// PageRect returns the rendered page size in points. Sizes for all pages
// are read with a single pdfinfo call and cached.
func (d *Document) PageRect(ctx context.Context, pageIndex int) (float64, float64, error) {
	if err := d.checkIndex(pageIndex); err != nil {
		return 0, 0, err
	}

	d.sizesOnce.Do(func() {
		out, err := d.client.run(ctx, pdfinfoBin, "-f", "1", "-l", strconv.Itoa(d.pageCount), d.path)
		if err != nil {
			d.sizesErr = err
			return
		}
		d.sizes = parsePageSizes(string(out))
	})
	if d.sizesErr != nil {
		return 0, 0, d.sizesErr
	}

	size, ok := d.sizes[pageIndex+1]
	if !ok {
		return 0, 0, fmt.Errorf("pdfinfo reported no size for page %d", pageIndex+1)
	}
	return size[0], size[1], nil
}

// RenderImage renders one page with pdftoppm at scale (1.0 = 72 dpi).
func (d *Document) RenderImage(ctx context.Context, pageIndex int, scale float64) (image.Image, error) {
	if err := d.checkIndex(pageIndex); err != nil {
		return nil, err
	}
	if scale <= 0 {
		return nil, fmt.Errorf("invalid scale %v", scale)
	}
	if d.tmpDir == "" {
		return nil, fmt.Errorf("document is closed")
	}

	page := strconv.Itoa(pageIndex + 1)
	dpi := strconv.FormatFloat(72*scale, 'f', -1, 64)
	root := filepath.Join(d.tmpDir, fmt.Sprintf("page-%s-%d", page, d.seq.Add(1)))

	if _, err := d.client.run(ctx, pdftoppmBin, "-tiff", "-r", dpi, "-f", page, "-l", page, "-singlefile", d.path, root); err != nil {
		return nil, err
	}

	out := root + ".tif"
	defer os.Remove(out)

	f, err := os.Open(out)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm produced no output: %w", err)
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rendered page: %w", err)
	}
	return img, nil
}

// RenderPage renders one page into a raster buffer. It implements
// colormode.Renderer.
func (d *Document) RenderPage(ctx context.Context, pageIndex int, scale float64) (*colormode.Raster, error) {
	img, err := d.RenderImage(ctx, pageIndex, scale)
	if err != nil {
		return nil, err
	}
	return colormode.FromImage(img), nil
}

// Previews renders up to MaxBulkPreviews leading pages at scale. A page
// that fails to render has a nil image and its error at the same index.
func (d *Document) Previews(ctx context.Context, scale float64) ([]image.Image, []error) {
	n := d.pageCount
	if n > MaxBulkPreviews {
		n = MaxBulkPreviews
	}

	images := make([]image.Image, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		images[i], errs[i] = d.RenderImage(ctx, i, scale)
	}
	return images, errs
}
