package livecookie

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWaitForRelease_UnlockedImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Cookies")
	if err := os.WriteFile(path, []byte("db"), 0o600); err != nil {
		t.Fatal(err)
	}

	orig := sleepContext
	sleepContext = func(_ context.Context, _ time.Duration) error {
		t.Fatal("unlocked file must not need polling")
		return nil
	}
	t.Cleanup(func() { sleepContext = orig })

	if err := waitForRelease(context.Background(), path, time.Second); err != nil {
		t.Fatal(err)
	}
}

func TestWaitForRelease_MissingFileTimesOut(t *testing.T) {
	orig := sleepContext
	sleepContext = func(_ context.Context, _ time.Duration) error { return nil }
	t.Cleanup(func() { sleepContext = orig })

	err := waitForRelease(context.Background(), filepath.Join(t.TempDir(), "missing"), 10*time.Millisecond)
	if !errors.Is(err, ErrProcess) {
		t.Fatalf("want ErrProcess got %v", err)
	}
}

func TestBrowserHandleStop_NilSafe(t *testing.T) {
	var h *browserHandle
	h.Stop()
	(&browserHandle{}).Stop()
}
