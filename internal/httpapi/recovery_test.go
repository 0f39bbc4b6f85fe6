package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Neur0toxine/atranscoder-rpc/internal/config"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v (%q)", err, rec.Body.String())
	}
	return body
}

func TestUnmatchedRouteReturnsJSON(t *testing.T) {
	srv := New(config.Config{TempDir: t.TempDir()}, &fakePool{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no-such-route", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if body := decodeError(t, rec); body.Error == "" {
		t.Error("expected a non-empty error message")
	}
}

func TestDisallowedMethodReturnsJSON(t *testing.T) {
	srv := New(config.Config{TempDir: t.TempDir()}, &fakePool{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/enqueue", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	decodeError(t, rec)
}

func TestPanicInHandlerReturnsJSON(t *testing.T) {
	h := jsonErrors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	decodeError(t, rec)
}
