//go:build linux && !android

package livecookie

import (
	"os"
	"path/filepath"
)

func chromiumUserDataDirs(b Browser) []string {
	base := xdgConfigHome()
	if base == "" {
		return nil
	}

	//nolint:exhaustive // Only Chromium-family browsers have user data dirs here.
	switch b {
	case BrowserChrome:
		return []string{
			filepath.Join(base, "google-chrome"),
			filepath.Join(base, "google-chrome-beta"),
			filepath.Join(base, "google-chrome-unstable"),
		}
	case BrowserChromium:
		return []string{filepath.Join(base, "chromium")}
	case BrowserEdge:
		return []string{
			filepath.Join(base, "microsoft-edge"),
			filepath.Join(base, "microsoft-edge-beta"),
			filepath.Join(base, "microsoft-edge-dev"),
		}
	case BrowserBrave:
		return []string{
			filepath.Join(base, "BraveSoftware", "Brave-Browser"),
			filepath.Join(base, "brave-browser"),
		}
	case BrowserVivaldi:
		return []string{filepath.Join(base, "vivaldi")}
	case BrowserOpera:
		return []string{filepath.Join(base, "opera")}
	default:
		return nil
	}
}

func xdgConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

func executableCandidates(b Browser) []string {
	//nolint:exhaustive // Only Chromium-family browsers can be launched.
	switch b {
	case BrowserChrome:
		return []string{
			"/usr/bin/google-chrome-stable",
			"/usr/bin/google-chrome",
			"/opt/google/chrome/chrome",
		}
	case BrowserChromium:
		return []string{
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
		}
	case BrowserEdge:
		return []string{
			"/usr/bin/microsoft-edge-stable",
			"/usr/bin/microsoft-edge",
			"/opt/microsoft/msedge/msedge",
		}
	case BrowserBrave:
		return []string{
			"/usr/bin/brave-browser-stable",
			"/usr/bin/brave-browser",
			"/opt/brave.com/brave/brave",
		}
	case BrowserVivaldi:
		return []string{"/usr/bin/vivaldi-stable", "/usr/bin/vivaldi"}
	case BrowserOpera:
		return []string{"/usr/bin/opera"}
	default:
		return nil
	}
}
