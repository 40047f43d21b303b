package poppler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultTimeout bounds a single pdfinfo or pdftoppm invocation.
	DefaultTimeout = 60 * time.Second

	pdfinfoBin  = "pdfinfo"
	pdftoppmBin = "pdftoppm"
)

// ErrNotInstalled is returned when the poppler tools cannot be found.
var ErrNotInstalled = errors.New("poppler tools not found")

var (
	pagesPattern     = regexp.MustCompile(`(?m)^Pages:\s+(\d+)`)
	pageSizePattern  = regexp.MustCompile(`(?m)^Page\s+(\d+)\s+size:\s+([\d.]+)\s+x\s+([\d.]+)\s+pts`)
	firstSizePattern = regexp.MustCompile(`(?m)^Page size:\s+([\d.]+)\s+x\s+([\d.]+)\s+pts`)
)

// Client runs the poppler command line tools.
type Client struct {
	// BinDir is the directory holding pdfinfo and pdftoppm. Empty means $PATH.
	BinDir  string
	Timeout time.Duration
	Logger  logrus.FieldLogger
}

// New creates a Client for the tools in binDir (empty for $PATH)
func New(binDir string) *Client {
	return &Client{BinDir: binDir, Timeout: DefaultTimeout}
}

func (c *Client) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// binary resolves a tool name against BinDir or $PATH.
func (c *Client) binary(name string) (string, error) {
	if c.BinDir != "" {
		name = filepath.Join(c.BinDir, name)
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotInstalled, name, err)
	}
	return path, nil
}

// Available reports whether both pdfinfo and pdftoppm can be run.
func (c *Client) Available() error {
	for _, name := range []string{pdfinfoBin, pdftoppmBin} {
		if _, err := c.binary(name); err != nil {
			return err
		}
	}
	return nil
}

// run executes a tool and returns its stdout.
func (c *Client) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	bin, err := c.binary(name)
	if err != nil {
		return nil, err
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	c.logger().WithFields(logrus.Fields{
		"tool":     name,
		"args":     strings.Join(args, " "),
		"duration": time.Since(start),
	}).Debug("ran poppler tool")

	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", name, ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s failed: %w", name, err)
		}
		return nil, fmt.Errorf("%s failed: %w: %s", name, err, msg)
	}

	return stdout.Bytes(), nil
}

// parsePageCount extracts the "Pages:" value from pdfinfo output.
func parsePageCount(out string) (int, error) {
	m := pagesPattern.FindStringSubmatch(out)
	if len(m) < 2 {
		return 0, fmt.Errorf("could not determine page count from pdfinfo output")
	}
	return strconv.Atoi(m[1])
}

// parsePageSizes extracts per-page sizes in points from pdfinfo output
// produced with -f/-l. Keys are 1-indexed page numbers. Output without
// per-page lines yields the single "Page size:" entry as page 1.
func parsePageSizes(out string) map[int][2]float64 {
	sizes := make(map[int][2]float64)

	for _, m := range pageSizePattern.FindAllStringSubmatch(out, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		w, errW := strconv.ParseFloat(m[2], 64)
		h, errH := strconv.ParseFloat(m[3], 64)
		if errW != nil || errH != nil {
			continue
		}
		sizes[n] = [2]float64{w, h}
	}

	if len(sizes) == 0 {
		if m := firstSizePattern.FindStringSubmatch(out); len(m) == 3 {
			w, errW := strconv.ParseFloat(m[1], 64)
			h, errH := strconv.ParseFloat(m[2], 64)
			if errW == nil && errH == nil {
				sizes[1] = [2]float64{w, h}
			}
		}
	}

	return sizes
}
