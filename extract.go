package livecookie

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Test seams around the process orchestration steps.
var (
	terminateBrowser       = terminateAllProcesses
	waitForDatabaseRelease = waitForRelease
)

const (
	defaultMaxAttempts    = 3
	defaultSettleDelay    = 5 * time.Second
	defaultHelperTimeout  = 3 * time.Second
	defaultReleaseTimeout = 10 * time.Second
)

// Extract recovers decrypted cookies for opts.Domain from the selected
// browser. It detects the browser's state, picks one of four strategies,
// executes it, and falls back to the direct database read at most once. An
// empty result is a success; the domain simply has no cookies.
func Extract(ctx context.Context, opts Options) (*Result, error) {
	if opts.Domain == "" {
		return nil, ErrNoDomain
	}
	applyDefaults(&opts)

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	queryDomain := normalizeQueryDomain(opts.Domain)

	if opts.Browser == BrowserFirefox {
		cookies, warnings, err := readFirefoxCookies(ctx, opts.ProfileDir, queryDomain)
		if err != nil {
			return nil, err
		}
		return &Result{
			Cookies:  filterCookiesByDomain(cookies, queryDomain, opts.IncludeExpired),
			Strategy: StrategyDirectDatabaseRead,
			Warnings: warnings,
		}, nil
	}

	e := &extraction{opts: opts, vendor: chromiumVendorForBrowser(opts.Browser), log: log, domain: queryDomain}

	state := detectState(ctx, e.vendor, opts.DebugPort)
	e.emit(Event{Kind: EventStateDetected, State: state})
	log.Debug().Stringer("state", state).Str("browser", string(opts.Browser)).Msg("browser state detected")

	strategy := selectStrategy(state, opts.WantDebugProtocol, opts.AllowAutoLaunch)
	e.emit(Event{Kind: EventStrategySelected, State: state, Strategy: strategy})
	log.Debug().Stringer("strategy", strategy).Msg("strategy selected")

	cookies, warnings, err := e.run(ctx, state, strategy)
	usedFallback := false
	if err != nil && strategy != StrategyDirectDatabaseRead && !errors.Is(err, ErrUnsupported) && !errors.Is(err, ErrPlatformUnsupported) {
		e.emit(Event{Kind: EventFallback, State: state, Strategy: StrategyDirectDatabaseRead, Err: err})
		log.Debug().Err(err).Msg("strategy failed, falling back to direct database read")

		usedFallback = true
		var fbWarnings []string
		cookies, fbWarnings, err = e.directRead(ctx)
		warnings = append(warnings, fbWarnings...)
	}
	if err != nil {
		finalStrategy := strategy
		if usedFallback {
			finalStrategy = StrategyDirectDatabaseRead
		}
		return nil, &ExtractError{
			State:       state,
			Strategy:    finalStrategy,
			Remediation: remediationFor(err, state, e.vendor, opts),
			err:         err,
		}
	}

	result := &Result{
		Cookies:      filterCookiesByDomain(cookies, queryDomain, opts.IncludeExpired),
		State:        state,
		Strategy:     strategy,
		UsedFallback: usedFallback,
		Warnings:     warnings,
	}
	log.Debug().Int("cookies", len(result.Cookies)).Bool("fallback", usedFallback).Msg("extraction finished")
	return result, nil
}

func applyDefaults(opts *Options) {
	if opts.Browser == "" {
		opts.Browser = BrowserChrome
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = defaultSettleDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultHelperTimeout
	}
	if opts.DebugPort <= 0 {
		opts.DebugPort = defaultDebugPort
		if raw := os.Getenv("LIVECOOKIE_DEBUG_PORT"); raw != "" {
			if p, err := parseInt64(raw); err == nil && p > 0 && p < 65536 {
				opts.DebugPort = int(p)
			}
		}
	}
}

type extraction struct {
	opts   Options
	vendor chromiumVendor
	log    zerolog.Logger
	domain string
}

func (e *extraction) emit(ev Event) {
	if e.opts.OnEvent != nil {
		e.opts.OnEvent(ev)
	}
}

func (e *extraction) run(ctx context.Context, state BrowserState, strategy Strategy) ([]Cookie, []string, error) {
	switch strategy {
	case StrategyUseExistingSession:
		cookies, err := e.fetchOverProtocol(ctx, strategy)
		return cookies, nil, err

	case StrategyRestartWithDebugging:
		return e.restartAndFetch(ctx, state)

	case StrategyLaunchWithOriginalProfile:
		return e.launchAndFetch(ctx, state, StrategyLaunchWithOriginalProfile)

	default:
		return e.directRead(ctx)
	}
}

func (e *extraction) restartAndFetch(ctx context.Context, state BrowserState) ([]Cookie, []string, error) {
	if err := terminateBrowser(ctx, e.vendor); err != nil {
		return nil, nil, err
	}
	e.emit(Event{Kind: EventBrowserTerminated, State: state, Strategy: StrategyRestartWithDebugging})
	e.log.Debug().Str("browser", string(e.vendor.browser)).Msg("running instances terminated")

	_, dbPath, err := e.resolveStorePaths()
	if err != nil {
		return nil, nil, err
	}
	if err := waitForDatabaseRelease(ctx, dbPath, defaultReleaseTimeout); err != nil {
		return nil, nil, err
	}

	return e.launchAndFetch(ctx, state, StrategyRestartWithDebugging)
}

func (e *extraction) launchAndFetch(ctx context.Context, state BrowserState, strategy Strategy) ([]Cookie, []string, error) {
	profileDir, _, err := e.resolveStorePaths()
	if err != nil {
		return nil, nil, err
	}

	handle, err := launchBrowser(ctx, e.vendor, profileDir, e.opts.DebugPort)
	if err != nil {
		return nil, nil, err
	}
	defer handle.Stop()
	e.emit(Event{Kind: EventBrowserLaunched, State: state, Strategy: strategy})
	e.log.Debug().Str("profile", profileDir).Int("port", e.opts.DebugPort).Msg("browser launched with debugging")

	// Give the browser time to load its cookie store into memory.
	if err := sleepContext(ctx, e.opts.SettleDelay); err != nil {
		return nil, nil, err
	}

	cookies, err := e.fetchOverProtocol(ctx, strategy)
	return cookies, nil, err
}

// fetchOverProtocol wraps the protocol call in the retry loop. Each attempt
// uses a fresh connection; a half-dead socket from a failed attempt is never
// reused.
func (e *extraction) fetchOverProtocol(ctx context.Context, strategy Strategy) ([]Cookie, error) {
	method := MethodStorage
	if e.opts.LegacyProtocol {
		method = MethodNetworkLegacy
	}

	var raw []devtoolsCookie
	onAttempt := func(attempt int, err error) {
		e.emit(Event{Kind: EventAttempt, Strategy: strategy, Attempt: attempt, MaxAttempts: e.opts.MaxAttempts, Err: err})
		e.log.Debug().Err(err).Int("attempt", attempt).Int("max", e.opts.MaxAttempts).Msg("protocol attempt failed")
	}
	err := withRetry(ctx, e.opts.MaxAttempts, onAttempt, func() error {
		var ferr error
		raw, ferr = fetchDevtoolsCookies(ctx, e.opts.DebugPort, method)
		return ferr
	})
	if err != nil {
		return nil, err
	}

	out := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		out = append(out, c.toCookie(e.vendor, strategy))
	}
	return out, nil
}

func (e *extraction) directRead(ctx context.Context) ([]Cookie, []string, error) {
	profileDir, dbPath, err := e.resolveStorePaths()
	if err != nil {
		return nil, nil, err
	}
	return directReadCookies(ctx, e.vendor, profileDir, dbPath, e.domain, e.opts.Timeout)
}

// resolveStorePaths locates the user-data directory and the cookie database
// inside it, honoring the caller's overrides.
func (e *extraction) resolveStorePaths() (profileDir string, dbPath string, err error) {
	profileDir = e.opts.ProfileDir
	if profileDir == "" {
		for _, dir := range chromiumUserDataDirs(e.vendor.browser) {
			if info, serr := os.Stat(dir); serr == nil && info.IsDir() {
				profileDir = dir
				break
			}
		}
	}
	if profileDir == "" {
		return "", "", fmt.Errorf("%s profile directory not found: %w", e.vendor.label, ErrProcess)
	}

	if e.opts.CookiesDBPath != "" {
		return profileDir, e.opts.CookiesDBPath, nil
	}
	candidates := []string{
		filepath.Join(profileDir, "Default", "Network", "Cookies"),
		filepath.Join(profileDir, "Default", "Cookies"),
		filepath.Join(profileDir, "Network", "Cookies"),
		filepath.Join(profileDir, "Cookies"),
	}
	for _, c := range candidates {
		if fileExists(c) {
			return profileDir, c, nil
		}
	}
	return profileDir, candidates[0], nil
}
