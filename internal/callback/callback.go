// Package callback delivers best-effort job-completion notifications to a
// client-supplied URL. Delivery failures are logged, never surfaced as job
// failures: the callback is a convenience, not a guarantee.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Neur0toxine/atranscoder-rpc/internal/logging"
)

// Client posts completion notifications.
type Client struct {
	http *http.Client
}

// New builds a Client with a bounded per-request timeout, independent of
// the caller's context deadline, so one unreachable callback endpoint can
// never wedge a worker indefinitely.
func New() *Client {
	return &Client{http: &http.Client{Timeout: 10 * time.Second}}
}

// payload is the JSON body POSTed to the callback URL: id always present,
// error present only on failure.
type payload struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

// Notify POSTs {"id": id, "error": errMsg} (error omitted on success) to
// url. Any failure -- build, transport, or non-2xx status -- is logged and
// otherwise ignored.
func (c *Client) Notify(ctx context.Context, url, id, errMsg string) {
	logger := logging.WithComponentFromContext(ctx, "callback").With().Str(logging.FieldURL, url).Logger()

	body, err := json.Marshal(payload{ID: id, Error: errMsg})
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal callback payload")
		return
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		logger.Error().Err(err).Msg("failed to build callback request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn().Err(err).Msg("callback delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn().Int("status", resp.StatusCode).Msg("callback endpoint returned non-2xx status")
	}
}
