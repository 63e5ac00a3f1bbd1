//go:build !windows && !(linux && !android) && !(darwin && !ios)

package livecookie

import "time"

func platformSecretUnwrapper() secretUnwrapper { return unsupportedUnwrapper{} }

func safeStorageCBCKeys(_ chromiumVendor, _ time.Duration) ([][]byte, []string) {
	return nil, []string{"livecookie: chromium cookie decryption unsupported on this OS"}
}
