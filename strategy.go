package livecookie

// selectStrategy maps the detected state and the caller's permissions to an
// extraction path. It is a pure function, total over its inputs, and never
// consults the environment.
//
// An already-open debug port is always used, regardless of permissions. A
// running browser without the port, or no browser at all, needs
// allowAutoLaunch before the process may be touched. When the caller wants
// the debug protocol against a running browser but forbids auto-launch, the
// session path is still chosen so the failure names the real obstacle
// instead of silently degrading. Everything else reads the database
// directly.
func selectStrategy(state BrowserState, wantDebug, allowAutoLaunch bool) Strategy {
	switch state {
	case StateRunningWithDebugging:
		return StrategyUseExistingSession
	case StateRunningWithoutDebugging:
		if allowAutoLaunch {
			return StrategyRestartWithDebugging
		}
		if wantDebug {
			return StrategyUseExistingSession
		}
		return StrategyDirectDatabaseRead
	default:
		if allowAutoLaunch {
			return StrategyLaunchWithOriginalProfile
		}
		return StrategyDirectDatabaseRead
	}
}
