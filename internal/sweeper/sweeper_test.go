package sweeper

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func TestSweepOnceRemovesStaleStagingFiles(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "a.in.atranscoder")
	fresh := filepath.Join(dir, "b.in.atranscoder")
	other := filepath.Join(dir, "c.keep")

	touch(t, old, time.Now().Add(-2*time.Hour))
	touch(t, fresh, time.Now())
	touch(t, other, time.Now().Add(-2*time.Hour))

	s := &Sweeper{WorkDir: dir, TTL: time.Hour}
	s.SweepOnce(context.Background())

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Errorf("expected stale staging file to be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("expected fresh staging file to survive: %v", err)
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("expected non-staging file to survive: %v", err)
	}
}

func TestSweepOnceExtensionMatchIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	upper := filepath.Join(dir, "a.in.ATRANSCODER")
	touch(t, upper, time.Now().Add(-2*time.Hour))

	s := &Sweeper{WorkDir: dir, TTL: time.Hour}
	s.SweepOnce(context.Background())

	if _, err := os.Stat(upper); !os.IsNotExist(err) {
		t.Errorf("expected case-insensitively matched staging file to be removed")
	}
}

func TestSweepOnceIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.in.atranscoder"), time.Now().Add(-2*time.Hour))

	s := &Sweeper{WorkDir: dir, TTL: time.Hour}
	s.SweepOnce(context.Background())
	s.SweepOnce(context.Background())
}

func TestSweepOnceMissingDirLogsAndReturns(t *testing.T) {
	s := &Sweeper{WorkDir: filepath.Join(t.TempDir(), "nope"), TTL: time.Hour}
	s.SweepOnce(context.Background())
}
