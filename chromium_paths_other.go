//go:build !windows && !(linux && !android) && !(darwin && !ios)

package livecookie

func chromiumUserDataDirs(_ Browser) []string { return nil }

func executableCandidates(_ Browser) []string { return nil }
