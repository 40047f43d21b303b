package server

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tsawler/pagecheck"
	"github.com/tsawler/pagecheck/format"
	"github.com/tsawler/pagecheck/poppler"
	"github.com/tsawler/pagecheck/store"
)

const (
	defaultPreviewScale = 1.0
	defaultPreviewWidth = 800
)

func (s *Server) uploadAndAnalyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No PDF file provided"})
		return
	}
	defer file.Close()

	pages, err := pagecheck.ParsePages(c.Query("pages"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := uuid.New().String()
	path := filepath.Join(s.uploadDir, id+".pdf")

	out, err := os.Create(path)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}
	_, copyErr := io.Copy(out, file)
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(path)
		c.Error(errors.Join(copyErr, closeErr))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	if f, err := format.DetectFile(path); err != nil || f != format.PDF {
		os.Remove(path)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "File is not a PDF"})
		return
	}

	log := s.log.WithFields(logrus.Fields{"id": id, "file": header.Filename})
	log.Info("analyzing upload")

	doc, err := s.analyzer.AnalyzeFile(c.Request.Context(), path, pages)
	if err != nil {
		os.Remove(path)
		switch {
		case errors.Is(err, pagecheck.ErrDocumentOpen):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, pagecheck.ErrPageRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
		}
		return
	}
	doc.Filename = filepath.Base(header.Filename)

	rec := store.NewRecord(doc)
	rec.ID = id
	rec.FilePath = path
	if err := s.store.Insert(c.Request.Context(), rec); err != nil {
		os.Remove(path)
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save report"})
		return
	}

	s.renderReport(c, http.StatusCreated, rec)
}

func (s *Server) listReports(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	records, total, err := s.store.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   records,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// lookup loads the record named by :id, writing a 404 when it is missing.
func (s *Server) lookup(c *gin.Context) (*store.Record, bool) {
	rec, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return nil, false
	}
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load report"})
		return nil, false
	}
	return rec, true
}

// pageNumber parses :n as a 1-indexed page of rec.
func pageNumber(c *gin.Context, rec *store.Record) (int, bool) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < 1 || (rec.Report != nil && n > rec.Report.PageCount) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
		return 0, false
	}
	return n, true
}

func (s *Server) getReport(c *gin.Context) {
	rec, ok := s.lookup(c)
	if !ok {
		return
	}
	s.renderReport(c, http.StatusOK, rec)
}

func (s *Server) deleteReport(c *gin.Context) {
	rec, ok := s.lookup(c)
	if !ok {
		return
	}

	if err := s.store.Delete(c.Request.Context(), rec.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete report"})
		return
	}
	if rec.FilePath != "" {
		if err := os.Remove(rec.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.WithError(err).WithField("id", rec.ID).Warn("failed to remove uploaded file")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Report deleted successfully"})
}

// getPage classifies one page of a stored upload afresh.
func (s *Server) getPage(c *gin.Context) {
	rec, ok := s.lookup(c)
	if !ok {
		return
	}
	n, ok := pageNumber(c, rec)
	if !ok {
		return
	}

	page, err := s.analyzer.AnalyzePageFile(c.Request.Context(), rec.FilePath, n)
	if err != nil {
		switch {
		case errors.Is(err, pagecheck.ErrPageRange):
			c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
		case errors.Is(err, pagecheck.ErrDocumentOpen):
			c.JSON(http.StatusGone, gin.H{"error": "Uploaded file is no longer readable"})
		default:
			c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
		}
		return
	}

	c.JSON(http.StatusOK, page)
}

// getPreview renders a PNG preview of one page of a stored upload.
func (s *Server) getPreview(c *gin.Context) {
	rec, ok := s.lookup(c)
	if !ok {
		return
	}
	n, ok := pageNumber(c, rec)
	if !ok {
		return
	}

	scale, err := strconv.ParseFloat(c.DefaultQuery("scale", "1.0"), 64)
	if err != nil || scale <= 0 || scale > 4 {
		scale = defaultPreviewScale
	}
	width, err := strconv.Atoi(c.DefaultQuery("width", strconv.Itoa(defaultPreviewWidth)))
	if err != nil || width < 0 {
		width = defaultPreviewWidth
	}

	client := s.poppler()
	if err := client.Available(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Page rendering is not available"})
		return
	}

	doc, err := client.Open(c.Request.Context(), rec.FilePath)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open document for rendering"})
		return
	}
	defer doc.Close()

	img, err := doc.RenderImage(c.Request.Context(), n-1, scale)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render page"})
		return
	}

	c.Header("Content-Type", "image/png")
	c.Status(http.StatusOK)
	if err := poppler.WritePNG(c.Writer, poppler.Thumbnail(img, width)); err != nil {
		c.Error(err)
	}
}
