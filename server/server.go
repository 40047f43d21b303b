// Package server exposes page checks over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tsawler/pagecheck"
	"github.com/tsawler/pagecheck/poppler"
	"github.com/tsawler/pagecheck/report"
	"github.com/tsawler/pagecheck/store"
	"golang.org/x/text/language"
)

// MaxUploadSize bounds accepted request bodies.
const MaxUploadSize = 100 << 20

// Options configures a Server.
type Options struct {
	Analyzer  *pagecheck.Analyzer
	Store     *store.Store
	UploadDir string
	Locale    language.Tag
	Logger    logrus.FieldLogger
}

// Server serves the analysis API.
type Server struct {
	analyzer  *pagecheck.Analyzer
	store     *store.Store
	uploadDir string
	locale    language.Tag
	log       logrus.FieldLogger
	router    *gin.Engine
}

// New creates a Server and its upload directory.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("server requires a store")
	}
	if opts.UploadDir == "" {
		return nil, errors.New("server requires an upload directory")
	}
	if err := os.MkdirAll(opts.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	s := &Server{
		analyzer:  opts.Analyzer,
		store:     opts.Store,
		uploadDir: opts.UploadDir,
		locale:    opts.Locale,
		log:       opts.Logger,
	}
	if s.analyzer == nil {
		s.analyzer = pagecheck.NewAnalyzer()
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.log))
	router.MaxMultipartMemory = 8 << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"poppler": s.popplerStatus(),
		})
	})

	api := router.Group("/api")
	{
		api.POST("/analyze", s.uploadAndAnalyze)
		api.GET("/reports", s.listReports)
		api.GET("/reports/:id", s.getReport)
		api.DELETE("/reports/:id", s.deleteReport)
		api.GET("/reports/:id/pages/:n", s.getPage)
		api.GET("/reports/:id/pages/:n/preview", s.getPreview)
	}

	return router
}

func (s *Server) poppler() *poppler.Client {
	if s.analyzer.Poppler != nil {
		return s.analyzer.Poppler
	}
	return poppler.New("")
}

func (s *Server) popplerStatus() string {
	if err := s.poppler().Available(); err != nil {
		return "unavailable"
	}
	return "available"
}

// requestLogger logs one line per request through logrus.
func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
			"client":   c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry.Error(c.Errors.String())
			return
		}
		entry.Info("request")
	}
}

// renderReport writes rec as JSON, or its report as text or HTML when
// ?format= asks for one.
func (s *Server) renderReport(c *gin.Context, status int, rec *store.Record) {
	kind, err := report.ParseKind(c.DefaultQuery("format", "json"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch kind {
	case report.KindText:
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Status(status)
		if err := report.Text(c.Writer, rec.Report, report.Options{Locale: s.locale}); err != nil {
			c.Error(err)
		}
	case report.KindHTML:
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(status)
		if err := report.HTML(c.Writer, rec.Report, report.Options{Locale: s.locale}); err != nil {
			c.Error(err)
		}
	default:
		c.JSON(status, rec)
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}
