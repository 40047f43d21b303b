// Package format recognizes PDF input before it is handed to a parser.
package format

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Format represents a recognized input format.
type Format int

const (
	// Unknown indicates the input is not a recognized PDF.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
)

// HeaderWindow is how far into a file the %PDF- marker may appear.
// Readers tolerate leading junk before the header.
const HeaderWindow = 1024

var versionPattern = regexp.MustCompile(`^%PDF-(\d+\.\d+)`)

// String returns the string representation of the format.
func (f Format) String() string {
	if f == PDF {
		return "PDF"
	}
	return "Unknown"
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	if f == PDF {
		return ".pdf"
	}
	return ""
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	if strings.ToLower(filepath.Ext(filename)) == ".pdf" {
		return PDF
	}
	return Unknown
}

// DetectFromMagic checks for the %PDF- marker within the first
// HeaderWindow bytes of data.
func DetectFromMagic(data []byte) Format {
	if headerOffset(data) >= 0 {
		return PDF
	}
	return Unknown
}

// Version returns the header version (e.g. "1.7"), or "" if data has no
// PDF header.
func Version(data []byte) string {
	off := headerOffset(data)
	if off < 0 {
		return ""
	}
	m := versionPattern.FindSubmatch(data[off:])
	if m == nil {
		return ""
	}
	return string(m[1])
}

func headerOffset(data []byte) int {
	if len(data) > HeaderWindow {
		data = data[:HeaderWindow]
	}
	return bytes.Index(data, []byte("%PDF-"))
}

// DetectFromReader inspects the beginning of r to determine format.
// This is more reliable than extension-based detection.
func DetectFromReader(r io.ReaderAt) (Format, error) {
	magic := make([]byte, HeaderWindow)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	return DetectFromMagic(magic[:n]), nil
}

// DetectFile opens path and inspects its content.
func DetectFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unknown, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return DetectFromReader(f)
}
