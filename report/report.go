// Package report renders a DocumentReport for people and programs.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tsawler/pagecheck/model"
	"golang.org/x/text/language"
)

// Kind selects an output representation.
type Kind string

const (
	KindText Kind = "text"
	KindJSON Kind = "json"
	KindHTML Kind = "html"
)

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindText, KindJSON, KindHTML:
		return k, nil
	case "":
		return KindText, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Options controls rendering.
type Options struct {
	// Locale formats millimetre values in text and HTML output.
	Locale language.Tag
}

// ParseLocale returns the language tag for s, falling back to English.
func ParseLocale(s string) language.Tag {
	if s == "" {
		return language.English
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.English
	}
	return tag
}

// Write renders r in the given kind.
func Write(w io.Writer, r *model.DocumentReport, kind Kind, opts Options) error {
	switch kind {
	case KindJSON:
		return JSON(w, r)
	case KindHTML:
		return HTML(w, r, opts)
	default:
		return Text(w, r, opts)
	}
}

// JSON writes r as indented JSON.
func JSON(w io.Writer, r *model.DocumentReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// ColorLabel is the short color tag shown before each page line.
func ColorLabel(c model.ColorMode) string {
	switch c {
	case model.ColorColor:
		return "Color"
	case model.ColorMonochrome:
		return "Mono"
	default:
		return "Unknown"
	}
}

// PageLine summarizes a page as "<Color|Mono> Page N: A4 (Portrait) [primary]".
func PageLine(p *model.PageReport) string {
	format := "Unknown format"
	if p.Format != nil {
		format = p.Format.Key()
	}
	line := fmt.Sprintf("%s Page %d: %s", ColorLabel(p.Color), p.Number(), format)
	if media, ok := p.MediaBox(); ok {
		line += " [" + media.Source.String() + "]"
	}
	return line
}
