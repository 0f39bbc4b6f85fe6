package httpapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Neur0toxine/atranscoder-rpc/internal/config"
	"github.com/Neur0toxine/atranscoder-rpc/internal/job"
	"github.com/google/uuid"
)

func newUUID() string { return uuid.New().String() }

type fakePool struct {
	mu   sync.Mutex
	jobs []job.Job
}

func (p *fakePool) Enqueue(j job.Job) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, j)
}

func newTestServer(t *testing.T) (*Server, *fakePool, config.Config) {
	t.Helper()
	cfg := config.Config{
		TempDir:     t.TempDir(),
		MaxBodySize: 1 << 20,
	}
	pool := &fakePool{}
	return New(cfg, pool), pool, cfg
}

func multipartBody(t *testing.T, fields map[string]string, fileContents []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	fw, err := w.CreateFormFile("file", "input.bin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(fileContents); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf, w.FormDataContentType()
}

func TestHandleEnqueueMultipartSuccess(t *testing.T) {
	srv, pool, cfg := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{
		"format":     "ogg",
		"codec":      "libopus",
		"sampleRate": "48000",
	}, []byte("fake audio"))

	req := httptest.NewRequest(http.MethodPost, "/enqueue", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp idBody
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == "" {
		t.Fatal("expected non-empty job id")
	}

	pool.mu.Lock()
	defer pool.mu.Unlock()
	if len(pool.jobs) != 1 {
		t.Fatalf("expected one enqueued job, got %d", len(pool.jobs))
	}
	staged := pool.jobs[0].InputPath
	if _, err := os.Stat(staged); err != nil {
		t.Fatalf("expected staged input at %s: %v", staged, err)
	}
	if filepath.Dir(staged) != cfg.TempDir {
		t.Fatalf("staged file outside temp dir: %s", staged)
	}
}

func TestHandleEnqueueMultipartMissingRequiredField(t *testing.T) {
	srv, _, _ := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{
		"format": "ogg",
	}, []byte("fake audio"))

	req := httptest.NewRequest(http.MethodPost, "/enqueue", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestHandleEnqueueURLSuccess(t *testing.T) {
	srv, pool, _ := newTestServer(t)

	payload, _ := json.Marshal(map[string]string{
		"format":     "ogg",
		"codec":      "libopus",
		"sampleRate": "48000",
		"url":        "https://example.invalid/audio.mp3",
	})

	req := httptest.NewRequest(http.MethodPost, "/enqueue_url", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}
	pool.mu.Lock()
	defer pool.mu.Unlock()
	if len(pool.jobs) != 1 || !pool.jobs[0].Params.Source.IsURL() {
		t.Fatalf("expected one enqueued URL job, got %+v", pool.jobs)
	}
}

func TestHandleEnqueueURLMissingURL(t *testing.T) {
	srv, _, _ := newTestServer(t)

	payload, _ := json.Marshal(map[string]string{
		"format":     "ogg",
		"codec":      "libopus",
		"sampleRate": "48000",
	})

	req := httptest.NewRequest(http.MethodPost, "/enqueue_url", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestHandleGetNotFoundBeforeResultExists(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/get/"+newUUID(), nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleGetStreamsExistingResult(t *testing.T) {
	srv, _, cfg := newTestServer(t)

	id := newUUID()
	outPath := filepath.Join(cfg.TempDir, id+".out.atranscoder")
	if err := os.WriteFile(outPath, []byte("OggS fake ogg body"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/get/"+id, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "OggS fake ogg body" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandleGetRejectsMalformedID(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/get/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAuthGateAppliesToAllRoutes(t *testing.T) {
	cfg := config.Config{TempDir: t.TempDir(), MaxBodySize: 1 << 20, APIKeys: []string{"secret"}}
	srv := New(cfg, &fakePool{})

	req := httptest.NewRequest(http.MethodGet, "/get/"+newUUID(), nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
