package livecookie

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoDomain is returned when Options.Domain is empty.
var ErrNoDomain = errors.New("livecookie: Domain required")

// Extraction failure taxonomy. Errors returned by Extract wrap one of these;
// match with errors.Is.
var (
	// ErrUnavailable means debug-port discovery failed or returned no usable
	// target. Transient: retried by the protocol-call retry loop.
	ErrUnavailable = errors.New("livecookie: debug endpoint unavailable")

	// ErrUnsupported means the profile uses the app-bound encryption scheme,
	// which binds the key to the profile path and needs privileges this
	// package does not attempt to obtain. Never retried, never falls back.
	ErrUnsupported = errors.New("livecookie: app-bound encryption not supported")

	// ErrProtocol means the browser answered the protocol call with an error
	// payload.
	ErrProtocol = errors.New("livecookie: protocol error")

	// ErrMalformedResponse means a protocol payload could not be decoded.
	ErrMalformedResponse = errors.New("livecookie: malformed protocol response")

	// ErrDecryptionFailed means tag verification failed or the plaintext was
	// not valid text.
	ErrDecryptionFailed = errors.New("livecookie: cookie decryption failed")

	// ErrTooShort means an encrypted value is below the scheme minimum.
	ErrTooShort = errors.New("livecookie: encrypted value too short")

	// ErrProcess means spawning, terminating or waiting on the browser
	// process failed.
	ErrProcess = errors.New("livecookie: browser process control failed")

	// ErrPlatformUnsupported means this OS has no per-user secret-unwrap
	// facility. Never retried: the failure is not transient.
	ErrPlatformUnsupported = errors.New("livecookie: platform secret unwrap unavailable")
)

// ExtractError is the terminal error returned by Extract. It carries the
// detected state, the strategy that failed last, and an ordered list of
// concrete next actions for the user.
type ExtractError struct {
	State       BrowserState
	Strategy    Strategy
	Remediation []string

	err error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("livecookie: extraction failed (state=%s strategy=%s): %v", e.State, e.Strategy, e.err)
}

func (e *ExtractError) Unwrap() error { return e.err }

// RemediationText renders the remediation steps as a numbered list.
func (e *ExtractError) RemediationText() string {
	var b strings.Builder
	for i, step := range e.Remediation {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return b.String()
}

func remediationFor(err error, state BrowserState, vendor chromiumVendor, opts Options) []string {
	switch {
	case errors.Is(err, ErrUnsupported):
		return []string{
			fmt.Sprintf("close all %s instances and re-run with AllowAutoLaunch so cookies can be read from a live debugging session", vendor.label),
			"use Firefox instead (its cookie store is not encrypted)",
			"export cookies with a browser extension",
		}
	case errors.Is(err, ErrPlatformUnsupported):
		return []string{
			"re-run with WantDebugProtocol or AllowAutoLaunch so the browser decrypts cookies itself",
			"use Firefox instead (its cookie store is not encrypted)",
		}
	case state == StateRunningWithoutDebugging && (opts.WantDebugProtocol || opts.AllowAutoLaunch):
		return []string{
			fmt.Sprintf("close all %s instances completely and re-run", vendor.label),
			fmt.Sprintf("or start it manually with --remote-debugging-port=%d and re-run with WantDebugProtocol", opts.DebugPort),
		}
	case state == StateNotRunning && opts.WantDebugProtocol && !opts.AllowAutoLaunch:
		return []string{
			"set AllowAutoLaunch so the browser can be started with debugging enabled",
			fmt.Sprintf("or start it manually with --remote-debugging-port=%d", opts.DebugPort),
		}
	default:
		return []string{
			fmt.Sprintf("close %s and re-run with AllowAutoLaunch", vendor.label),
			"use Firefox instead (its cookie store is not encrypted)",
			"export cookies with a browser extension",
		}
	}
}
