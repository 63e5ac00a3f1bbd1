package livecookie

import (
	"time"

	"github.com/rs/zerolog"
)

// Browser identifies a cookie source.
type Browser string

const (
	// BrowserChrome is Google Chrome.
	BrowserChrome Browser = "chrome"
	// BrowserChromium is Chromium.
	BrowserChromium Browser = "chromium"
	// BrowserEdge is Microsoft Edge.
	BrowserEdge Browser = "edge"
	// BrowserBrave is Brave Browser.
	BrowserBrave Browser = "brave"
	// BrowserVivaldi is Vivaldi.
	BrowserVivaldi Browser = "vivaldi"
	// BrowserOpera is Opera.
	BrowserOpera Browser = "opera"

	// BrowserFirefox is Mozilla Firefox. Firefox stores cookies in plaintext,
	// so it bypasses the state machine and reads cookies.sqlite directly.
	BrowserFirefox Browser = "firefox"
)

// SameSite is the cookie SameSite attribute.
type SameSite string

const (
	// SameSiteNone is SameSite=None.
	SameSiteNone SameSite = "None"
	// SameSiteLax is SameSite=Lax.
	SameSiteLax SameSite = "Lax"
	// SameSiteStrict is SameSite=Strict.
	SameSiteStrict SameSite = "Strict"
)

// BrowserState classifies the browser's process state at detection time.
// It is derived fresh on every extraction attempt and never persisted.
type BrowserState int

const (
	// StateNotRunning means no browser process was found.
	StateNotRunning BrowserState = iota
	// StateRunningWithDebugging means the debug port accepted a connection.
	StateRunningWithDebugging
	// StateRunningWithoutDebugging means a browser process exists but the
	// debug port is closed.
	StateRunningWithoutDebugging
)

func (s BrowserState) String() string {
	switch s {
	case StateRunningWithDebugging:
		return "running-with-debugging"
	case StateRunningWithoutDebugging:
		return "running-without-debugging"
	default:
		return "not-running"
	}
}

// Strategy is one of the four extraction paths.
type Strategy int

const (
	// StrategyUseExistingSession queries a browser that already exposes its
	// debug port.
	StrategyUseExistingSession Strategy = iota
	// StrategyRestartWithDebugging closes the browser and relaunches it
	// against its original profile with debugging enabled.
	StrategyRestartWithDebugging
	// StrategyLaunchWithOriginalProfile launches the browser (not previously
	// running) against its original profile with debugging enabled.
	StrategyLaunchWithOriginalProfile
	// StrategyDirectDatabaseRead decrypts the on-disk cookie database.
	StrategyDirectDatabaseRead
)

func (s Strategy) String() string {
	switch s {
	case StrategyUseExistingSession:
		return "use-existing-session"
	case StrategyRestartWithDebugging:
		return "restart-with-debugging"
	case StrategyLaunchWithOriginalProfile:
		return "launch-with-original-profile"
	default:
		return "direct-database-read"
	}
}

// ProtocolMethodVersion selects which debug-protocol cookie query is issued.
type ProtocolMethodVersion int

const (
	// MethodStorage is the modern cookie-storage query. It works headless and
	// returns partitioned cookies.
	MethodStorage ProtocolMethodVersion = iota
	// MethodNetworkLegacy is the deprecated network-layer query. It requires
	// an explicit enable call first and is retained only for old browsers;
	// callers must opt in.
	MethodNetworkLegacy
)

// EventKind tags a progress Event.
type EventKind int

const (
	// EventStateDetected reports the detected BrowserState.
	EventStateDetected EventKind = iota
	// EventStrategySelected reports the chosen Strategy.
	EventStrategySelected
	// EventAttempt reports one protocol attempt (Attempt of MaxAttempts).
	EventAttempt
	// EventBrowserTerminated reports that running browser instances were
	// signalled to exit.
	EventBrowserTerminated
	// EventBrowserLaunched reports a relaunch with the original profile.
	EventBrowserLaunched
	// EventFallback reports the single fallback to the direct database read.
	EventFallback
)

// Event is emitted by the orchestrator so a CLI/TUI can render progress.
// The core itself never writes to the console.
type Event struct {
	Kind        EventKind
	State       BrowserState
	Strategy    Strategy
	Attempt     int
	MaxAttempts int
	Err         error
}

// Source describes where a cookie came from.
type Source struct {
	Browser   Browser
	Strategy  Strategy
	StorePath string
}

// Cookie is a decrypted browser cookie. Value is always valid text.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  int64 // unix seconds; <= 0 means session cookie
	Secure   bool
	HTTPOnly bool
	SameSite SameSite

	Source Source
}

// Options configures one extraction attempt.
type Options struct {
	// Domain filters the result. Accepts a bare domain or a URL; scheme,
	// path and a leading "www." are stripped. Required.
	Domain string

	// Browser selects the browser family. Defaults to BrowserChrome.
	Browser Browser

	// WantDebugProtocol prefers the debug-protocol path even when the
	// browser is not currently exposing its debug port.
	WantDebugProtocol bool

	// AllowAutoLaunch permits closing and/or launching the browser to get a
	// debugging session against the original profile.
	AllowAutoLaunch bool

	// LegacyProtocol issues the deprecated network-layer cookie query
	// instead of the modern storage query.
	LegacyProtocol bool

	// DebugPort overrides the well-known local debug port (default 9222,
	// or LIVECOOKIE_DEBUG_PORT).
	DebugPort int

	// ProfileDir overrides the browser's user-data directory. It must be the
	// original directory: the strongest encryption scheme binds keys to the
	// profile's on-disk path, so a copy cannot be decrypted.
	ProfileDir string

	// CookiesDBPath overrides the cookie database path for the direct read.
	CookiesDBPath string

	// MaxAttempts bounds protocol-call retries. Defaults to 3.
	MaxAttempts int

	// SettleDelay is how long to wait after a launch for the browser to load
	// cookies into memory. Defaults to 5s.
	SettleDelay time.Duration

	// Timeout for OS helper calls (keychain/keyring, process table).
	Timeout time.Duration

	// IncludeExpired keeps cookies whose expiry is in the past.
	IncludeExpired bool

	// Logger receives debug-level narration. Nil means no logging.
	Logger *zerolog.Logger

	// OnEvent, if set, receives structured progress events.
	OnEvent func(Event)
}

// Result is returned by Extract.
type Result struct {
	Cookies []Cookie

	// State and Strategy record what the orchestrator detected and chose.
	State    BrowserState
	Strategy Strategy

	// UsedFallback is true when the chosen strategy failed and the direct
	// database read produced the result instead.
	UsedFallback bool

	Warnings []string
}
