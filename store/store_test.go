package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tsawler/pagecheck/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport(name string) *model.DocumentReport {
	f := model.PaperFormat{Name: "A4", Orientation: model.Portrait}
	media := model.NewBoxRecord(model.MediaBox, model.NewRect(0, 0, 595, 842), model.SourcePrimary)
	return &model.DocumentReport{
		Filename:  name,
		PageCount: 2,
		Pages: []*model.PageReport{
			{Index: 0, Boxes: model.BoxSet{model.MediaBox: media}, Format: &f, Color: model.ColorColor},
			{Index: 1, Boxes: model.BoxSet{}, Color: model.ColorMonochrome,
				Diagnostics: []model.DiagnosticEvent{model.Warningf("could not determine page format for page 2")}},
		},
		MixedColorAlert: true,
		AnalyzedAt:      time.Now().UTC(),
	}
}

func TestNewRecordSummary(t *testing.T) {
	rec := NewRecord(sampleReport("a.pdf"))

	if _, err := uuid.Parse(rec.ID); err != nil {
		t.Errorf("ID %q is not a UUID", rec.ID)
	}
	if rec.Filename != "a.pdf" || rec.PageCount != 2 || rec.ColorPages != 1 || rec.MonochromePages != 1 {
		t.Errorf("unexpected summary: %+v", rec)
	}
	if !rec.MixedColorAlert || rec.MixedFormatAlert {
		t.Errorf("alerts not copied: %+v", rec)
	}
}

func TestInsertAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := NewRecord(sampleReport("a.pdf"))
	rec.FilePath = "/uploads/a.pdf"
	if err := s.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.FilePath != "/uploads/a.pdf" {
		t.Errorf("FilePath = %q", got.FilePath)
	}
	if got.Report == nil || len(got.Report.Pages) != 2 {
		t.Fatalf("report not restored: %+v", got.Report)
	}
	p := got.Report.Pages[0]
	if p.Format == nil || p.Format.Key() != "A4 (Portrait)" {
		t.Errorf("page 1 format = %v", p.Format)
	}
	if _, ok := p.Boxes.Get(model.MediaBox); !ok {
		t.Error("page 1 MediaBox lost")
	}
	if got.Report.Pages[1].Format != nil {
		t.Error("page 2 should have no format")
	}
}

func TestGetNotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{uuid.New().String(), "not-a-uuid", ""} {
		if _, err := s.Get(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%q) error = %v, want ErrNotFound", id, err)
		}
	}
}

func TestListAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var ids []string
	for i, name := range []string{"first.pdf", "second.pdf", "third.pdf"} {
		rec := NewRecord(sampleReport(name))
		rec.CreatedAt = time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC)
		if err := s.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
		ids = append(ids, rec.ID)
	}

	records, total, err := s.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if total != 3 || len(records) != 2 {
		t.Fatalf("List() = %d records of %d, want 2 of 3", len(records), total)
	}
	if records[0].Filename != "third.pdf" {
		t.Errorf("newest first: got %q", records[0].Filename)
	}
	if records[0].Report != nil {
		t.Error("listing should not load full reports")
	}

	if err := s.Delete(ctx, ids[0]); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := s.Delete(ctx, ids[0]); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if _, total, _ := s.List(ctx, 10, 0); total != 2 {
		t.Errorf("total after delete = %d, want 2", total)
	}
}
