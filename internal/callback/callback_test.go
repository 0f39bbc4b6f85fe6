package callback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNotifySuccess(t *testing.T) {
	received := make(chan payload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode body: %v", err)
		}
		received <- p
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New()
	c.Notify(context.Background(), srv.URL, "job-1", "")

	select {
	case p := <-received:
		if p.ID != "job-1" || p.Error != "" {
			t.Errorf("got payload %+v", p)
		}
	default:
		t.Fatal("callback was not delivered")
	}
}

func TestNotifyIncludesError(t *testing.T) {
	received := make(chan payload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p payload
		_ = json.NewDecoder(r.Body).Decode(&p)
		received <- p
	}))
	defer srv.Close()

	c := New()
	c.Notify(context.Background(), srv.URL, "job-2", "boom")

	p := <-received
	if p.Error != "boom" {
		t.Errorf("got error %q, want %q", p.Error, "boom")
	}
}

func TestNotifyDoesNotPanicOnUnreachableURL(t *testing.T) {
	c := New()
	c.Notify(context.Background(), "http://127.0.0.1:1", "job-3", "")
}

func TestNotifyNoopWhenURLEmpty(t *testing.T) {
	// Driver itself guards against empty URLs; Notify is still safe if
	// called directly, since the HTTP client fails to send a request with no
	// scheme and the error is simply logged.
	c := New()
	c.Notify(context.Background(), "", "job-4", "")
}
