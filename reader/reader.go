package reader

import (
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/tsawler/pagecheck/boxes"
	"github.com/tsawler/pagecheck/model"
)

// maxParentDepth bounds the /Parent walk for inherited attributes.
const maxParentDepth = 32

// Reader gives page-level access to the boxes of a PDF file
type Reader struct {
	file      *os.File
	pdf       *pdf.Reader
	pageCount int
}

// Open opens a PDF file and returns a Reader
func Open(filename string) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	r, err := NewReader(file, info.Size())
	if err != nil {
		file.Close()
		return nil, err
	}
	r.file = file

	return r, nil
}

// NewReader creates a Reader over an in-memory or already opened PDF.
// The caller keeps ownership of ra.
func NewReader(ra io.ReaderAt, size int64) (r *Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, fmt.Errorf("failed to parse PDF: %v", p)
		}
	}()

	pr, err := pdf.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}

	return &Reader{pdf: pr, pageCount: pr.NumPage()}, nil
}

// Close closes the underlying file if the Reader opened it
func (r *Reader) Close() error {
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

// PageCount returns the number of pages in the PDF
func (r *Reader) PageCount() int {
	return r.pageCount
}

// Page returns the page at the given index (0-based)
func (r *Reader) Page(index int) (p *Page, err error) {
	if index < 0 || index >= r.pageCount {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, r.pageCount)
	}

	defer func() {
		if rec := recover(); rec != nil {
			p, err = nil, fmt.Errorf("failed to load page %d: %v", index+1, rec)
		}
	}()

	v := r.pdf.Page(index + 1).V
	if v.IsNull() || v.Kind() != pdf.Dict {
		return nil, fmt.Errorf("page %d has no page dictionary", index+1)
	}

	return &Page{v: v, index: index}, nil
}

// Page is a single page dictionary. It implements boxes.Source.
type Page struct {
	v     pdf.Value
	index int
}

var _ boxes.Source = (*Page)(nil)

// Index returns the 0-based page index
func (p *Page) Index() int {
	return p.index
}

// inheritable reports whether kind may be inherited from the page tree.
// Only MediaBox and CropBox are; the other boxes default to the CropBox
// in viewers, which is not the same as being present.
func inheritable(kind model.BoxKind) bool {
	return kind == model.MediaBox || kind == model.CropBox
}

// lookup finds the value for key on the page or, if allowed, on an ancestor.
func (p *Page) lookup(key string, inherit bool) pdf.Value {
	v := p.v.Key(key)
	if !v.IsNull() || !inherit {
		return v
	}

	node := p.v
	for i := 0; i < maxParentDepth; i++ {
		node = node.Key("Parent")
		if node.IsNull() {
			break
		}
		if v := node.Key(key); !v.IsNull() {
			return v
		}
	}
	return v
}

// HasBox reports whether the page defines kind, directly or through inheritance
func (p *Page) HasBox(kind model.BoxKind) bool {
	return !p.lookup(kind.String(), inheritable(kind)).IsNull()
}

// ReadBox returns the raw rectangle for kind
func (p *Page) ReadBox(kind model.BoxKind) (boxes.RawRect, error) {
	v := p.lookup(kind.String(), inheritable(kind))
	if v.IsNull() {
		return boxes.RawRect{}, fmt.Errorf("%s not found", kind)
	}
	if v.Kind() != pdf.Array {
		return boxes.RawRect{}, fmt.Errorf("invalid %s type: %v", kind, v.Kind())
	}
	if v.Len() != 4 {
		return boxes.RawRect{}, fmt.Errorf("invalid %s length: %d (expected 4)", kind, v.Len())
	}

	var raw boxes.RawRect
	for i := 0; i < 4; i++ {
		elem := v.Index(i)
		switch elem.Kind() {
		case pdf.Integer:
			raw[i] = elem.Int64()
		case pdf.Real:
			raw[i] = elem.Float64()
		default:
			return boxes.RawRect{}, fmt.Errorf("invalid %s element type: %v", kind, elem.Kind())
		}
	}

	return raw, nil
}

// Rotate returns the page rotation (0, 90, 180, or 270). It is inheritable.
func (p *Page) Rotate() int {
	v := p.lookup("Rotate", true)
	if v.Kind() != pdf.Integer {
		return 0
	}
	return int(((v.Int64() % 360) + 360) % 360)
}
