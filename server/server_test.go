package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/tsawler/pagecheck"
	"github.com/tsawler/pagecheck/model"
	"github.com/tsawler/pagecheck/poppler"
	"github.com/tsawler/pagecheck/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// samplePDF has an A4 page and a Letter page.
func samplePDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()

	st, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("store.Open() error: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	a := pagecheck.NewAnalyzer()
	// an empty bin dir keeps tests independent of installed tools
	a.Poppler = poppler.New(t.TempDir())

	uploads := filepath.Join(dir, "uploads")
	s, err := New(Options{Analyzer: a, Store: st, UploadDir: uploads})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s, uploads
}

func upload(t *testing.T, s *Server, name string, data []byte, query string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze"+query, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func do(s *Server, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" || body["poppler"] != "unavailable" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestUploadAndReportLifecycle(t *testing.T) {
	s, uploads := newTestServer(t)

	w := upload(t, s, "mixed.pdf", samplePDF(), "")
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d: %s", w.Code, w.Body.String())
	}

	var rec store.Record
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if rec.ID == "" || rec.Filename != "mixed.pdf" || rec.PageCount != 2 {
		t.Errorf("unexpected record: %+v", rec)
	}
	if !rec.MixedFormatAlert || rec.Report == nil || !rec.Report.MixedFormatAlert {
		t.Error("expected mixed format alert")
	}
	if _, err := os.Stat(filepath.Join(uploads, rec.ID+".pdf")); err != nil {
		t.Errorf("upload not stored: %v", err)
	}

	// list
	w = do(s, http.MethodGet, "/api/reports")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), rec.ID) {
		t.Errorf("list = %d: %s", w.Code, w.Body.String())
	}

	// get, as JSON and as text
	w = do(s, http.MethodGet, "/api/reports/"+rec.ID)
	if w.Code != http.StatusOK {
		t.Errorf("get status = %d", w.Code)
	}
	w = do(s, http.MethodGet, "/api/reports/"+rec.ID+"?format=text")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Page 2: Letter (Portrait) [primary]") {
		t.Errorf("text report = %d: %s", w.Code, w.Body.String())
	}
	w = do(s, http.MethodGet, "/api/reports/"+rec.ID+"?format=html")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("html report = %d %q", w.Code, w.Header().Get("Content-Type"))
	}

	// single page
	w = do(s, http.MethodGet, "/api/reports/"+rec.ID+"/pages/1")
	if w.Code != http.StatusOK {
		t.Fatalf("page status = %d: %s", w.Code, w.Body.String())
	}
	var page model.PageReport
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if page.Format == nil || page.Format.Key() != "A4 (Portrait)" {
		t.Errorf("page format = %v", page.Format)
	}
	if w = do(s, http.MethodGet, "/api/reports/"+rec.ID+"/pages/3"); w.Code != http.StatusNotFound {
		t.Errorf("out of range page status = %d", w.Code)
	}

	// preview needs poppler
	if w = do(s, http.MethodGet, "/api/reports/"+rec.ID+"/pages/1/preview"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("preview status = %d", w.Code)
	}

	// delete
	if w = do(s, http.MethodDelete, "/api/reports/"+rec.ID); w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
	if _, err := os.Stat(filepath.Join(uploads, rec.ID+".pdf")); !os.IsNotExist(err) {
		t.Error("uploaded file not removed")
	}
	if w = do(s, http.MethodGet, "/api/reports/"+rec.ID); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", w.Code)
	}
	if w = do(s, http.MethodDelete, "/api/reports/"+rec.ID); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", w.Code)
	}
}

func TestUploadPageSelection(t *testing.T) {
	s, _ := newTestServer(t)

	w := upload(t, s, "mixed.pdf", samplePDF(), "?pages=2")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var rec store.Record
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if len(rec.Report.Pages) != 1 || rec.MixedFormatAlert {
		t.Errorf("unexpected selection result: %+v", rec.Report)
	}

	if w := upload(t, s, "mixed.pdf", samplePDF(), "?pages=5"); w.Code != http.StatusBadRequest {
		t.Errorf("out of range selection status = %d", w.Code)
	}
	if w := upload(t, s, "mixed.pdf", samplePDF(), "?pages=x"); w.Code != http.StatusBadRequest {
		t.Errorf("malformed selection status = %d", w.Code)
	}
}

func TestUploadRejected(t *testing.T) {
	s, uploads := newTestServer(t)

	tests := []struct {
		name string
		data []byte
		want int
	}{
		{"notes.pdf", []byte("plain text"), http.StatusUnprocessableEntity},
		{"broken.pdf", []byte("%PDF-1.4\ngarbage"), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		if w := upload(t, s, tt.name, tt.data, ""); w.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, w.Code, tt.want)
		}
	}

	entries, err := os.ReadDir(uploads)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("rejected uploads left %d files behind", len(entries))
	}

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(""))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing file status = %d", w.Code)
	}
}

func TestReportNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{
		"/api/reports/not-a-uuid",
		"/api/reports/6f1c1e0e-4c1b-4d55-9a43-3b4a3f0d6a11",
		"/api/reports/6f1c1e0e-4c1b-4d55-9a43-3b4a3f0d6a11/pages/1",
	} {
		if w := do(s, http.MethodGet, path); w.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d", path, w.Code)
		}
	}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(Options{UploadDir: t.TempDir()}); err == nil {
		t.Error("expected error without store")
	}
}
