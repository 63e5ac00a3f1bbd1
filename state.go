package livecookie

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

const debugPortProbeTimeout = 100 * time.Millisecond

// Test seams, in the spirit of execCommandContext.
var (
	probeDebugPort   = probeDebugPortTCP
	scanProcessNames = listRunningProcessNames
)

// detectState classifies the browser's current state. It never fails: a
// process-table read error is treated as "not running" so the caller can
// still fall through to a launch or a direct database read.
func detectState(ctx context.Context, vendor chromiumVendor, port int) BrowserState {
	if probeDebugPort(port) {
		return StateRunningWithDebugging
	}

	names, err := scanProcessNames(ctx)
	if err != nil {
		return StateNotRunning
	}
	for _, name := range names {
		name = strings.ToLower(name)
		for _, want := range vendor.processNames {
			if strings.Contains(name, want) {
				return StateRunningWithoutDebugging
			}
		}
	}
	return StateNotRunning
}

func probeDebugPortTCP(port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), debugPortProbeTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
