package livecookie

import "testing"

func TestSelectStrategy_DebugPortAlwaysWins(t *testing.T) {
	for _, wantDebug := range []bool{false, true} {
		for _, autoLaunch := range []bool{false, true} {
			got := selectStrategy(StateRunningWithDebugging, wantDebug, autoLaunch)
			if got != StrategyUseExistingSession {
				t.Fatalf("wantDebug=%v autoLaunch=%v: want %v got %v",
					wantDebug, autoLaunch, StrategyUseExistingSession, got)
			}
		}
	}
}

func TestSelectStrategy_RunningWithoutDebugging(t *testing.T) {
	if got := selectStrategy(StateRunningWithoutDebugging, false, true); got != StrategyRestartWithDebugging {
		t.Fatalf("autoLaunch: want %v got %v", StrategyRestartWithDebugging, got)
	}
	if got := selectStrategy(StateRunningWithoutDebugging, true, true); got != StrategyRestartWithDebugging {
		t.Fatalf("autoLaunch+wantDebug: want %v got %v", StrategyRestartWithDebugging, got)
	}
	// The caller insists on the protocol but forbids touching the process:
	// choose the session anyway, so the failure names the real obstacle.
	if got := selectStrategy(StateRunningWithoutDebugging, true, false); got != StrategyUseExistingSession {
		t.Fatalf("wantDebug only: want %v got %v", StrategyUseExistingSession, got)
	}
	if got := selectStrategy(StateRunningWithoutDebugging, false, false); got != StrategyDirectDatabaseRead {
		t.Fatalf("neither: want %v got %v", StrategyDirectDatabaseRead, got)
	}
}

func TestSelectStrategy_NotRunning(t *testing.T) {
	if got := selectStrategy(StateNotRunning, false, true); got != StrategyLaunchWithOriginalProfile {
		t.Fatalf("autoLaunch: want %v got %v", StrategyLaunchWithOriginalProfile, got)
	}
	if got := selectStrategy(StateNotRunning, true, true); got != StrategyLaunchWithOriginalProfile {
		t.Fatalf("autoLaunch+wantDebug: want %v got %v", StrategyLaunchWithOriginalProfile, got)
	}
	if got := selectStrategy(StateNotRunning, true, false); got != StrategyDirectDatabaseRead {
		t.Fatalf("wantDebug only: want %v got %v", StrategyDirectDatabaseRead, got)
	}
	if got := selectStrategy(StateNotRunning, false, false); got != StrategyDirectDatabaseRead {
		t.Fatalf("neither: want %v got %v", StrategyDirectDatabaseRead, got)
	}
}
