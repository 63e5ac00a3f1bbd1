//go:build windows

package livecookie

import (
	"os"
	"path/filepath"
)

func chromiumUserDataDirs(b Browser) []string {
	var roots []string
	if local := os.Getenv("LOCALAPPDATA"); local != "" {
		//nolint:exhaustive // Opera and non-Chromium browsers have no LOCALAPPDATA store.
		switch b {
		case BrowserChrome:
			roots = append(roots, filepath.Join(local, "Google", "Chrome", "User Data"))
		case BrowserChromium:
			roots = append(roots, filepath.Join(local, "Chromium", "User Data"))
		case BrowserEdge:
			roots = append(roots, filepath.Join(local, "Microsoft", "Edge", "User Data"))
		case BrowserBrave:
			roots = append(roots, filepath.Join(local, "BraveSoftware", "Brave-Browser", "User Data"))
		case BrowserVivaldi:
			roots = append(roots, filepath.Join(local, "Vivaldi", "User Data"))
		}
	}

	// Opera stores its profile in roaming AppData.
	if roam := os.Getenv("APPDATA"); roam != "" && b == BrowserOpera {
		roots = append(roots,
			filepath.Join(roam, "Opera Software", "Opera Stable"),
			filepath.Join(roam, "Opera Software", "Opera GX Stable"),
		)
	}
	return roots
}

func executableCandidates(b Browser) []string {
	programFiles := os.Getenv("ProgramFiles")
	if programFiles == "" {
		programFiles = `C:\Program Files`
	}
	programFilesX86 := os.Getenv("ProgramFiles(x86)")
	if programFilesX86 == "" {
		programFilesX86 = `C:\Program Files (x86)`
	}
	local := os.Getenv("LOCALAPPDATA")

	join3 := func(roots []string, parts ...string) []string {
		var out []string
		for _, root := range roots {
			if root == "" {
				continue
			}
			out = append(out, filepath.Join(append([]string{root}, parts...)...))
		}
		return out
	}
	roots := []string{local, programFiles, programFilesX86}

	//nolint:exhaustive // Only Chromium-family browsers can be launched.
	switch b {
	case BrowserChrome:
		return join3(roots, "Google", "Chrome", "Application", "chrome.exe")
	case BrowserChromium:
		return join3(roots, "Chromium", "Application", "chrome.exe")
	case BrowserEdge:
		return join3([]string{programFilesX86, programFiles}, "Microsoft", "Edge", "Application", "msedge.exe")
	case BrowserBrave:
		return join3(roots, "BraveSoftware", "Brave-Browser", "Application", "brave.exe")
	case BrowserVivaldi:
		return join3([]string{local, programFiles}, "Vivaldi", "Application", "vivaldi.exe")
	case BrowserOpera:
		return join3([]string{local, programFiles}, "Programs", "Opera", "opera.exe")
	default:
		return nil
	}
}
