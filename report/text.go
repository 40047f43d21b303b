package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/tsawler/pagecheck/model"
	"golang.org/x/text/message"
)

// Text writes a human-readable report: a summary, one section per page
// with its box table, then alerts and diagnostics.
func Text(w io.Writer, r *model.DocumentReport, opts Options) error {
	p := message.NewPrinter(opts.Locale)
	var b strings.Builder

	if r.Filename != "" {
		b.WriteString(p.Sprintf("File: %s\n", r.Filename))
	}
	b.WriteString(p.Sprintf("Pages: %d (%d analyzed)\n", r.PageCount, len(r.Pages)))
	b.WriteString(p.Sprintf("Color pages: %d, monochrome pages: %d, unknown: %d\n",
		r.CountColor(model.ColorColor), r.CountColor(model.ColorMonochrome), r.CountColor(model.ColorUnknown)))

	for _, page := range r.Pages {
		b.WriteString("\n")
		b.WriteString(PageLine(page))
		b.WriteString("\n")
		writeBoxTable(&b, p, page)
		for _, d := range page.Diagnostics {
			if d.Severity >= model.SeverityWarning {
				b.WriteString("  " + d.String() + "\n")
			}
		}
	}

	if r.MixedFormatAlert || r.MixedColorAlert {
		b.WriteString("\nAlerts:\n")
		if r.MixedFormatAlert {
			b.WriteString("  ALERT: the document contains pages with different formats: " + strings.Join(r.Formats(), ", ") + "\n")
		}
		if r.MixedColorAlert {
			b.WriteString("  ALERT: the document contains both color and monochrome pages\n")
		}
	}

	if len(r.Diagnostics) > 0 {
		b.WriteString("\nDiagnostics:\n")
		for _, d := range r.Diagnostics {
			b.WriteString("  " + d.String() + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeBoxTable(b *strings.Builder, p *message.Printer, page *model.PageReport) {
	if len(page.Boxes) == 0 {
		b.WriteString("  no page boxes\n")
		return
	}

	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  Box\tWidth (mm)\tHeight (mm)\tX (mm)\tY (mm)\tSource")
	for _, rec := range page.Boxes.Records() {
		fmt.Fprintln(tw, p.Sprintf("  %s\t%.2f\t%.2f\t%.2f\t%.2f\t%s",
			rec.Kind, rec.WidthMM, rec.HeightMM, rec.OriginXMM, rec.OriginYMM, rec.Source))
	}
	tw.Flush()
}
