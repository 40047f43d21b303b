package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/pagecheck"
	"github.com/tsawler/pagecheck/config"
	"github.com/tsawler/pagecheck/model"
)

// setup isolates the config file and hides poppler from the commands.
func setup(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PAGECHECK_POPPLER_PATH", t.TempDir())
	t.Setenv("PAGECHECK_LOG_LEVEL", "error")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 842 595] >>",
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "landscape.pdf")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAnalyzeCommand(t *testing.T) {
	path := setup(t)

	var out bytes.Buffer
	if err := run(context.Background(), "analyze", []string{"-format", "json", path}, &out); err != nil {
		t.Fatalf("analyze error: %v", err)
	}

	var doc model.DocumentReport
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(doc.Pages) != 1 || doc.Pages[0].Format == nil || doc.Pages[0].Format.Key() != "A4 (Landscape)" {
		t.Errorf("unexpected report: %+v", doc)
	}
}

func TestAnalyzeCommandText(t *testing.T) {
	path := setup(t)

	var out bytes.Buffer
	if err := run(context.Background(), "analyze", []string{path}, &out); err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	if !strings.Contains(out.String(), "Unknown Page 1: A4 (Landscape) [primary]") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestPageCommand(t *testing.T) {
	path := setup(t)

	var out bytes.Buffer
	if err := run(context.Background(), "page", []string{"-n", "1", path}, &out); err != nil {
		t.Fatalf("page error: %v", err)
	}
	if !strings.Contains(out.String(), "MediaBox") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	err := run(context.Background(), "page", []string{"-n", "2", path}, &out)
	if !errors.Is(err, pagecheck.ErrPageRange) {
		t.Errorf("error = %v, want ErrPageRange", err)
	}
}

func TestUsageErrors(t *testing.T) {
	path := setup(t)

	tests := []struct {
		cmd  string
		args []string
	}{
		{"frobnicate", nil},
		{"analyze", nil},
		{"analyze", []string{"-format", "pdf", path}},
		{"analyze", []string{"-pages", "0", path}},
		{"preview", []string{path}},
	}
	for _, tt := range tests {
		err := run(context.Background(), tt.cmd, tt.args, &bytes.Buffer{})
		if !errors.Is(err, errUsage) {
			t.Errorf("%s %v: error = %v, want usage error", tt.cmd, tt.args, err)
		}
	}
}

func TestConfigCommand(t *testing.T) {
	setup(t)
	dir := t.TempDir()

	var out bytes.Buffer
	if err := run(context.Background(), "config", []string{"-poppler", dir, "-locale", "pt-BR"}, &out); err != nil {
		t.Fatalf("config error: %v", err)
	}

	home, _ := os.UserHomeDir()
	cfg, err := config.ReadFile(filepath.Join(home, config.FileName))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PopplerPath != dir || cfg.Locale != "pt-BR" {
		t.Errorf("config not saved: %+v", cfg)
	}
	if cfg.LogLevel == "error" {
		t.Error("environment override was persisted")
	}
}
