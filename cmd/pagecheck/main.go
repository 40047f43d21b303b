// Command pagecheck reports page boxes, paper formats and color usage of
// PDF documents.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/pagecheck"
	"github.com/tsawler/pagecheck/config"
	"github.com/tsawler/pagecheck/poppler"
	"github.com/tsawler/pagecheck/report"
	"github.com/tsawler/pagecheck/server"
	"github.com/tsawler/pagecheck/store"
)

const usage = `Usage: pagecheck <command> [flags]

Commands:
  analyze [-format text|json|html] [-pages 1,3-5] [-workers N] <pdf>
  page -n N <pdf>
  preview [-n N] [-scale S] [-width W] -o <out> <pdf>
  serve [-addr :8080]
  config [-poppler DIR] [-locale TAG] [-log-level LEVEL]
`

// errUsage marks command-line mistakes; they exit with status 2.
var errUsage = errors.New("usage error")

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "pagecheck: %v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// app carries what every command needs.
type app struct {
	cfgPath string
	cfg     *config.Config
	log     *logrus.Logger
	out     io.Writer
}

func newApp(out io.Writer) (*app, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log := cfg.NewLogger()
	log.SetOutput(os.Stderr)
	return &app{cfgPath: path, cfg: cfg, log: log, out: out}, nil
}

func (a *app) analyzer(workers int) *pagecheck.Analyzer {
	an := pagecheck.NewAnalyzer()
	an.Workers = workers
	an.Poppler = poppler.New(a.cfg.PopplerPath)
	an.Poppler.Logger = a.log
	an.Logger = a.log
	return an
}

func run(ctx context.Context, cmd string, args []string, out io.Writer) error {
	a, err := newApp(out)
	if err != nil {
		return err
	}

	switch cmd {
	case "analyze":
		return a.analyze(ctx, args)
	case "page":
		return a.page(ctx, args)
	case "preview":
		return a.preview(ctx, args)
	case "serve":
		return a.serve(ctx, args)
	case "config":
		return a.configure(args)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parse parses args and returns the single PDF path argument.
func parse(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%w: %s needs exactly one PDF path", errUsage, fs.Name())
	}
	return fs.Arg(0), nil
}

func (a *app) analyze(ctx context.Context, args []string) error {
	fs := newFlagSet("analyze")
	formatName := fs.String("format", "text", "output format: text, json or html")
	pagesFlag := fs.String("pages", "", "pages to analyze, e.g. 1,3-5 (default all)")
	workers := fs.Int("workers", a.cfg.Workers, "pages rendered concurrently")
	path, err := parse(fs, args)
	if err != nil {
		return err
	}

	kind, err := report.ParseKind(*formatName)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	pages, err := pagecheck.ParsePages(*pagesFlag)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	doc, err := a.analyzer(*workers).AnalyzeFile(ctx, path, pages)
	if err != nil {
		return err
	}
	return report.Write(a.out, doc, kind, report.Options{Locale: report.ParseLocale(a.cfg.Locale)})
}

func (a *app) page(ctx context.Context, args []string) error {
	fs := newFlagSet("page")
	n := fs.Int("n", 1, "page number")
	path, err := parse(fs, args)
	if err != nil {
		return err
	}

	p, err := a.analyzer(1).AnalyzePageFile(ctx, path, *n)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, report.PageLine(p))
	for _, rec := range p.Boxes.Records() {
		fmt.Fprintf(a.out, "  %-9s %8.2f x %8.2f mm at (%.2f, %.2f) [%s]\n",
			rec.Kind, rec.WidthMM, rec.HeightMM, rec.OriginXMM, rec.OriginYMM, rec.Source)
	}
	for _, d := range p.Diagnostics {
		fmt.Fprintln(a.out, "  "+d.String())
	}
	return nil
}

func (a *app) preview(ctx context.Context, args []string) error {
	fs := newFlagSet("preview")
	n := fs.Int("n", 0, "page number; 0 renders the first pages into the -o directory")
	scale := fs.Float64("scale", 1.0, "render scale (1.0 = 72 dpi)")
	width := fs.Int("width", 800, "maximum preview width in pixels, 0 for full size")
	outPath := fs.String("o", "", "output PNG file, or directory when -n is 0")
	path, err := parse(fs, args)
	if err != nil {
		return err
	}
	if *outPath == "" {
		return fmt.Errorf("%w: preview needs -o", errUsage)
	}

	client := poppler.New(a.cfg.PopplerPath)
	client.Logger = a.log
	doc, err := client.Open(ctx, path)
	if err != nil {
		return err
	}
	defer doc.Close()

	if *n > 0 {
		img, err := doc.RenderImage(ctx, *n-1, *scale)
		if err != nil {
			return err
		}
		return writePNG(*outPath, poppler.Thumbnail(img, *width))
	}

	if err := os.MkdirAll(*outPath, 0o755); err != nil {
		return err
	}
	images, errs := doc.Previews(ctx, *scale)
	for i, img := range images {
		if errs[i] != nil {
			a.log.WithError(errs[i]).WithField("page", i+1).Warn("failed to render preview")
			continue
		}
		name := filepath.Join(*outPath, fmt.Sprintf("page-%d.png", i+1))
		if err := writePNG(name, poppler.Thumbnail(img, *width)); err != nil {
			return err
		}
		fmt.Fprintln(a.out, name)
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := poppler.WritePNG(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func (a *app) serve(ctx context.Context, args []string) error {
	fs := newFlagSet("serve")
	addr := fs.String("addr", a.cfg.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	st, err := store.Open(a.cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := server.New(server.Options{
		Analyzer:  a.analyzer(a.cfg.Workers),
		Store:     st,
		UploadDir: a.cfg.UploadDir,
		Locale:    report.ParseLocale(a.cfg.Locale),
		Logger:    a.log,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx, *addr)
}

// configure persists preferences. Only the file is read and written so
// environment overrides are not saved.
func (a *app) configure(args []string) error {
	fs := newFlagSet("config")
	popplerDir := fs.String("poppler", "", "directory holding pdfinfo and pdftoppm")
	locale := fs.String("locale", "", "locale for number formatting, e.g. pt-BR")
	level := fs.String("log-level", "", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	cfg, err := config.ReadFile(a.cfgPath)
	if err != nil {
		return err
	}

	changed := false
	fs.Visit(func(f *flag.Flag) { changed = true })
	if !changed {
		fmt.Fprintf(a.out, "config file: %s\npoppler: %s\nlocale: %s\nlog level: %s\n",
			a.cfgPath, orDefault(cfg.PopplerPath, "$PATH"), cfg.Locale, cfg.LogLevel)
		return nil
	}

	if *popplerDir != "" {
		if err := poppler.New(*popplerDir).Available(); err != nil {
			a.log.WithError(err).Warn("poppler tools not found in the given directory")
		}
		cfg.PopplerPath = *popplerDir
	}
	if *locale != "" {
		cfg.Locale = *locale
	}
	if *level != "" {
		if _, err := logrus.ParseLevel(*level); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		cfg.LogLevel = *level
	}

	if err := cfg.Save(a.cfgPath); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "saved %s\n", a.cfgPath)
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
