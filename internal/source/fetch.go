// Package source stages a Job's input on disk, either by trusting an
// already-staged local file or by fetching a remote URL under a byte cap.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/Neur0toxine/atranscoder-rpc/internal/job"
)

// ErrTooLarge is returned when the remote body exceeds the source's
// configured max_bytes.
var ErrTooLarge = errors.New("source: response exceeds the limit")

// fetchChunkSize bounds how much of the response body is read per Read
// call, so the cumulative-size check in Stage fires promptly instead of
// only after an unbounded single read.
const fetchChunkSize = 64 * 1024

// Stage ensures j.InputPath exists and is ready to be opened by the
// transcoder. For a local-file source this is a no-op: the file is assumed
// already staged by the HTTP intake layer. For a URL source it performs the
// GET and streams the response into InputPath, enforcing max_bytes.
func Stage(ctx context.Context, client *http.Client, j job.Job) error {
	if !j.Params.Source.IsURL() {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.Params.Source.URL(), nil)
	if err != nil {
		return fmt.Errorf("source: build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("source: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("source: unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(j.InputPath)
	if err != nil {
		return fmt.Errorf("source: create staging file: %w", err)
	}
	defer out.Close()

	maxBytes := j.Params.Source.MaxBytes()
	if err := copyCapped(out, resp.Body, maxBytes); err != nil {
		return err
	}
	return nil
}

// copyCapped copies src into dst in fetchChunkSize increments, aborting
// with ErrTooLarge the moment the running total exceeds limit. limit <= 0
// means unbounded.
func copyCapped(dst io.Writer, src io.Reader, limit int64) error {
	var total int64
	buf := make([]byte, fetchChunkSize)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			total += int64(n)
			if limit > 0 && total > limit {
				return ErrTooLarge
			}
			if _, err := dst.Write(buf[:n]); err != nil {
				return fmt.Errorf("source: write staging file: %w", err)
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return nil
			}
			return fmt.Errorf("source: read response body: %w", readErr)
		}
	}
}
