package livecookie

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	launchReadyTimeout  = 15 * time.Second
	launchProbeInterval = 500 * time.Millisecond
	releasePollInterval = 200 * time.Millisecond
)

// launchBrowser is a test seam around launchWithProfile.
var launchBrowser = launchWithProfile

// browserHandle owns a browser process spawned by this package. Stop
// terminates it and reaps the child; it is safe to call on every exit path.
type browserHandle struct {
	cmd  *exec.Cmd
	done chan error
}

func (h *browserHandle) Stop() {
	if h == nil || h.cmd == nil || h.cmd.Process == nil {
		return
	}
	_ = h.cmd.Process.Kill()
	<-h.done
}

// findExecutable resolves the browser binary: PATH first, then the standard
// per-platform install locations. The error lists everything searched so the
// user can tell what is missing.
func findExecutable(vendor chromiumVendor) (string, error) {
	var searched []string
	for _, name := range vendor.processNames {
		if strings.HasSuffix(name, ".exe") || strings.ContainsRune(name, ' ') {
			continue
		}
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
		searched = append(searched, name+" (PATH)")
	}

	for _, candidate := range executableCandidates(vendor.browser) {
		if fileExists(candidate) {
			return candidate, nil
		}
		searched = append(searched, candidate)
	}

	return "", fmt.Errorf("%s executable not found, searched: %s: %w",
		vendor.label, strings.Join(searched, ", "), ErrProcess)
}

// launchWithProfile starts the browser against its ORIGINAL user-data
// directory with remote debugging enabled. The original directory matters:
// the strongest encryption scheme binds the key to the profile's on-disk
// path, so launching against a copy leaves every cookie undecryptable.
func launchWithProfile(ctx context.Context, vendor chromiumVendor, profileDir string, port int) (*browserHandle, error) {
	exe, err := findExecutable(vendor)
	if err != nil {
		return nil, err
	}

	cmd := execCommandContext(ctx, exe,
		fmt.Sprintf("--remote-debugging-port=%d", port),
		"--user-data-dir="+profileDir,
		"--headless=new",
		"--disable-gpu",
		"--no-first-run",
		"--no-default-browser-check",
		"about:blank",
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn %s: %v: %w", vendor.label, err, ErrProcess)
	}

	h := &browserHandle{cmd: cmd, done: make(chan error, 1)}
	go func() { h.done <- cmd.Wait() }()

	if err := waitForDebugEndpoint(ctx, h, port); err != nil {
		h.Stop()
		return nil, err
	}
	return h, nil
}

// waitForDebugEndpoint polls the version endpoint until the browser answers,
// the child exits, or the readiness timeout elapses.
func waitForDebugEndpoint(ctx context.Context, h *browserHandle, port int) error {
	deadline := time.Now().Add(launchReadyTimeout)
	client := &http.Client{Timeout: 2 * time.Second}
	url := fmt.Sprintf("http://127.0.0.1:%d/json/version", port)

	for {
		select {
		case err := <-h.done:
			h.done <- err
			return fmt.Errorf("browser exited during startup (%v): %w", err, ErrProcess)
		default:
		}

		if probeDebugPort(port) {
			resp, err := client.Get(url)
			if err == nil {
				_ = resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					return nil
				}
			}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("debug endpoint not ready after %s (port %d busy, firewall, or another instance holds the profile): %w",
				launchReadyTimeout, port, ErrProcess)
		}
		if err := sleepContext(ctx, launchProbeInterval); err != nil {
			return err
		}
	}
}

// waitForRelease polls until the cookie database can be opened for writing
// (the OS has dropped the exiting browser's file handles) or the timeout
// elapses.
func waitForRelease(ctx context.Context, dbPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		f, err := os.OpenFile(dbPath, os.O_RDWR, 0)
		if err == nil {
			_ = f.Close()
			return nil
		}
		lastErr = err

		if time.Now().After(deadline) {
			return fmt.Errorf("cookie database still locked after %s (%v): %w", timeout, lastErr, ErrProcess)
		}
		if err := sleepContext(ctx, releasePollInterval); err != nil {
			return err
		}
	}
}
