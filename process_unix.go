//go:build !windows

package livecookie

import (
	"context"
	"fmt"
	"strings"
	"time"
)

func listRunningProcessNames(ctx context.Context) ([]string, error) {
	stdout, _, err := execCapture(ctx, "ps", []string{"-axo", "comm="})
	if err != nil {
		return nil, err
	}
	var out []string
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// ps may report a full executable path.
		if idx := strings.LastIndexByte(line, '/'); idx >= 0 {
			line = line[idx+1:]
		}
		out = append(out, line)
	}
	return out, nil
}

// terminateAllProcesses signals every process matching the family's name list,
// waits briefly, then force-kills stragglers. Best-effort: a name with no
// matching process is not an error.
func terminateAllProcesses(ctx context.Context, vendor chromiumVendor) error {
	signalled := false
	for _, name := range vendor.processNames {
		if strings.HasSuffix(name, ".exe") {
			continue
		}
		if _, _, err := execCapture(ctx, "pkill", []string{"-x", name}); err == nil {
			signalled = true
		}
	}
	if !signalled {
		return nil
	}

	if err := sleepContext(ctx, 2*time.Second); err != nil {
		return err
	}

	names, err := scanProcessNames(ctx)
	if err != nil {
		return nil
	}
	for _, running := range names {
		running = strings.ToLower(running)
		for _, want := range vendor.processNames {
			if strings.Contains(running, want) {
				if _, _, err := execCapture(ctx, "pkill", []string{"-9", "-x", want}); err != nil {
					return fmt.Errorf("force-kill %s: %w", want, ErrProcess)
				}
			}
		}
	}
	return nil
}
