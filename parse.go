package livecookie

import (
	"strconv"
	"strings"
)

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func envKeySafeStoragePassword(b Browser) string {
	//nolint:exhaustive // Only Chromium-family browsers map to Safe Storage env overrides.
	switch b {
	case BrowserChrome:
		return "LIVECOOKIE_CHROME_SAFE_STORAGE_PASSWORD"
	case BrowserEdge:
		return "LIVECOOKIE_EDGE_SAFE_STORAGE_PASSWORD"
	case BrowserBrave:
		return "LIVECOOKIE_BRAVE_SAFE_STORAGE_PASSWORD"
	case BrowserChromium:
		return "LIVECOOKIE_CHROMIUM_SAFE_STORAGE_PASSWORD"
	case BrowserVivaldi:
		return "LIVECOOKIE_VIVALDI_SAFE_STORAGE_PASSWORD"
	case BrowserOpera:
		return "LIVECOOKIE_OPERA_SAFE_STORAGE_PASSWORD"
	default:
		return "LIVECOOKIE_SAFE_STORAGE_PASSWORD"
	}
}
