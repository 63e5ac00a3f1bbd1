package livecookie

import "fmt"

type chromiumVendor struct {
	browser Browser

	// user-visible
	label string

	// "Safe Storage" secret identifier.
	safeStorageService string
	safeStorageAccount string

	// substrings matched (case-insensitive) against the process table.
	processNames []string
}

func chromiumVendorForBrowser(b Browser) chromiumVendor {
	//nolint:exhaustive // Only Chromium-family browsers are mapped here.
	switch b {
	case BrowserChrome:
		return chromiumVendor{
			browser: b, label: "Chrome",
			safeStorageService: "Chrome Safe Storage", safeStorageAccount: "Chrome",
			processNames: []string{"chrome.exe", "google-chrome", "google chrome", "chrome"},
		}
	case BrowserChromium:
		return chromiumVendor{
			browser: b, label: "Chromium",
			safeStorageService: "Chromium Safe Storage", safeStorageAccount: "Chromium",
			processNames: []string{"chromium-browser", "chromium"},
		}
	case BrowserEdge:
		return chromiumVendor{
			browser: b, label: "Microsoft Edge",
			safeStorageService: "Microsoft Edge Safe Storage", safeStorageAccount: "Microsoft Edge",
			processNames: []string{"msedge.exe", "microsoft-edge", "msedge"},
		}
	case BrowserBrave:
		return chromiumVendor{
			browser: b, label: "Brave",
			safeStorageService: "Brave Safe Storage", safeStorageAccount: "Brave",
			processNames: []string{"brave.exe", "brave-browser", "brave"},
		}
	case BrowserVivaldi:
		return chromiumVendor{
			browser: b, label: "Vivaldi",
			safeStorageService: "Vivaldi Safe Storage", safeStorageAccount: "Vivaldi",
			processNames: []string{"vivaldi.exe", "vivaldi"},
		}
	case BrowserOpera:
		return chromiumVendor{
			browser: b, label: "Opera",
			safeStorageService: "Opera Safe Storage", safeStorageAccount: "Opera",
			processNames: []string{"opera.exe", "opera"},
		}
	default:
		return chromiumVendor{
			browser: b, label: string(b),
			safeStorageService: fmt.Sprintf("%s Safe Storage", b), safeStorageAccount: string(b),
			processNames: []string{string(b)},
		}
	}
}
