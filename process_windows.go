//go:build windows

package livecookie

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"
)

func listRunningProcessNames(ctx context.Context) ([]string, error) {
	stdout, _, err := execCapture(ctx, "tasklist", []string{"/fo", "csv", "/nh"})
	if err != nil {
		return nil, err
	}

	var out []string
	r := csv.NewReader(strings.NewReader(stdout))
	r.FieldsPerRecord = -1
	for {
		record, err := r.Read()
		if err != nil {
			break
		}
		if len(record) > 0 && record[0] != "" {
			out = append(out, record[0])
		}
	}
	return out, nil
}

// terminateAllProcesses asks every matching image to exit, waits briefly,
// then force-kills with taskkill /F. Best-effort: a missing image is not an
// error.
func terminateAllProcesses(ctx context.Context, vendor chromiumVendor) error {
	image := vendor.processNames[0]
	if !strings.HasSuffix(image, ".exe") {
		image += ".exe"
	}

	if _, _, err := execCapture(ctx, "taskkill", []string{"/IM", image, "/T"}); err != nil {
		// Graceful request failed (often "no tasks running"); carry on and
		// let the rescan decide whether force is needed.
		_ = err
	}

	if err := sleepContext(ctx, 2*time.Second); err != nil {
		return err
	}

	names, err := scanProcessNames(ctx)
	if err != nil {
		return nil
	}
	for _, running := range names {
		if strings.EqualFold(running, image) {
			if _, _, err := execCapture(ctx, "taskkill", []string{"/F", "/IM", image, "/T"}); err != nil {
				return fmt.Errorf("taskkill /F %s: %w", image, ErrProcess)
			}
			break
		}
	}
	return nil
}
