//go:build !windows && !(linux && !android) && !(darwin && !ios)

package livecookie

func firefoxRoots() []string { return nil }
