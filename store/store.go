// Package store keeps a history of analysis reports in SQLite.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/tsawler/pagecheck/model"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when no record has the requested ID.
var ErrNotFound = errors.New("report not found")

// Record is one stored analysis. Summary columns are duplicated from the
// report so listings do not need to decode it.
type Record struct {
	ID               string                `json:"id" gorm:"primaryKey"`
	Filename         string                `json:"filename"`
	FilePath         string                `json:"-"`
	PageCount        int                   `json:"page_count"`
	ColorPages       int                   `json:"color_pages"`
	MonochromePages  int                   `json:"monochrome_pages"`
	MixedFormatAlert bool                  `json:"mixed_format_alert"`
	MixedColorAlert  bool                  `json:"mixed_color_alert"`
	Report           *model.DocumentReport `json:"report,omitempty" gorm:"serializer:json"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// NewRecord creates a record with a fresh ID for r.
func NewRecord(r *model.DocumentReport) *Record {
	rec := &Record{ID: uuid.New().String()}
	rec.SetReport(r)
	return rec
}

// SetReport stores r and refreshes the summary columns.
func (rec *Record) SetReport(r *model.DocumentReport) {
	rec.Report = r
	if r == nil {
		return
	}
	rec.Filename = r.Filename
	rec.PageCount = r.PageCount
	rec.ColorPages = r.CountColor(model.ColorColor)
	rec.MonochromePages = r.CountColor(model.ColorMonochrome)
	rec.MixedFormatAlert = r.MixedFormatAlert
	rec.MixedColorAlert = r.MixedColorAlert
}

// Store wraps a GORM connection.
type Store struct {
	db *gorm.DB
}

// Open connects to the SQLite database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Insert saves rec. rec.ID is assigned when empty.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Get returns the record with the given ID, including its full report.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var rec Record
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return &rec, nil
}

// List returns records newest first without their full reports, and the
// total number of records.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Record, int64, error) {
	var records []Record
	db := s.db.WithContext(ctx)

	err := db.Omit("Report").Order("created_at DESC").Limit(limit).Offset(offset).Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}

	var total int64
	if err := db.Model(&Record{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return records, total, nil
}

// Delete removes the record with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	result := s.db.WithContext(ctx).Delete(&Record{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
