package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/tsawler/pagecheck/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/message"
)

const stylesheet = `body{font-family:sans-serif;margin:2em}
table{border-collapse:collapse;margin:.5em 0 1.5em}
td,th{border:1px solid #ccc;padding:.25em .6em;text-align:right}
th:first-child,td:first-child{text-align:left}
.alert{color:#b00020;font-weight:bold}
.WARNING{color:#a15c00}.ERROR{color:#b00020}`

func el(a atom.Atom, attrs map[string]string, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for k, v := range attrs {
		n.Attr = append(n.Attr, html.Attribute{Key: k, Val: v})
	}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func classed(class string) map[string]string {
	return map[string]string{"class": class}
}

// HTML writes a standalone HTML page describing r.
func HTML(w io.Writer, r *model.DocumentReport, opts Options) error {
	p := message.NewPrinter(opts.Locale)

	title := "Page check"
	if r.Filename != "" {
		title += ": " + r.Filename
	}

	body := el(atom.Body, nil,
		el(atom.H1, nil, text(title)),
		el(atom.P, nil, text(p.Sprintf("%d pages, %d analyzed. %d color, %d monochrome, %d unknown.",
			r.PageCount, len(r.Pages),
			r.CountColor(model.ColorColor), r.CountColor(model.ColorMonochrome), r.CountColor(model.ColorUnknown)))),
	)

	if r.MixedFormatAlert {
		body.AppendChild(el(atom.P, classed("alert"),
			text("ALERT: the document contains pages with different formats: "+strings.Join(r.Formats(), ", "))))
	}
	if r.MixedColorAlert {
		body.AppendChild(el(atom.P, classed("alert"),
			text("ALERT: the document contains both color and monochrome pages")))
	}

	for _, page := range r.Pages {
		section := el(atom.Section, map[string]string{"id": fmt.Sprintf("page-%d", page.Number())},
			el(atom.H2, nil, text(PageLine(page))))
		if len(page.Boxes) > 0 {
			section.AppendChild(boxTable(p, page))
		}
		if list := diagnosticList(page.Diagnostics); list != nil {
			section.AppendChild(list)
		}
		body.AppendChild(section)
	}

	if list := diagnosticList(r.Diagnostics); list != nil {
		body.AppendChild(el(atom.H2, nil, text("Diagnostics")))
		body.AppendChild(list)
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(el(atom.Html, nil,
		el(atom.Head, nil,
			el(atom.Meta, map[string]string{"charset": "utf-8"}),
			el(atom.Title, nil, text(title)),
			el(atom.Style, nil, text(stylesheet)),
		),
		body,
	))

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	return nil
}

func boxTable(p *message.Printer, page *model.PageReport) *html.Node {
	header := el(atom.Tr, nil)
	for _, h := range []string{"Box", "Width (mm)", "Height (mm)", "X (mm)", "Y (mm)", "Source"} {
		header.AppendChild(el(atom.Th, nil, text(h)))
	}

	table := el(atom.Table, nil, header)
	for _, rec := range page.Boxes.Records() {
		table.AppendChild(el(atom.Tr, nil,
			el(atom.Td, nil, text(rec.Kind.String())),
			el(atom.Td, nil, text(p.Sprintf("%.2f", rec.WidthMM))),
			el(atom.Td, nil, text(p.Sprintf("%.2f", rec.HeightMM))),
			el(atom.Td, nil, text(p.Sprintf("%.2f", rec.OriginXMM))),
			el(atom.Td, nil, text(p.Sprintf("%.2f", rec.OriginYMM))),
			el(atom.Td, nil, text(rec.Source.String())),
		))
	}
	return table
}

func diagnosticList(diags []model.DiagnosticEvent) *html.Node {
	if len(diags) == 0 {
		return nil
	}
	ul := el(atom.Ul, nil)
	for _, d := range diags {
		ul.AppendChild(el(atom.Li, classed(d.Severity.String()), text(d.String())))
	}
	return ul
}
