//go:build darwin && !ios

package livecookie

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
)

func platformSecretUnwrapper() secretUnwrapper { return unsupportedUnwrapper{} }

// safeStorageCBCKeys derives the single AES-CBC key for v10 values in macOS
// profiles from the Safe Storage password held in the login keychain.
func safeStorageCBCKeys(vendor chromiumVendor, timeout time.Duration) ([][]byte, []string) {
	password, warnings := macosSafeStoragePassword(vendor, timeout)
	if password == "" {
		return nil, warnings
	}
	return [][]byte{chromiumDeriveAESCBCKey(password, chromiumAESCBCIterationsMacOS)}, warnings
}

func macosSafeStoragePassword(vendor chromiumVendor, timeout time.Duration) (string, []string) {
	// Escape hatch for deterministic tooling/CI.
	if override := strings.TrimSpace(os.Getenv(envKeySafeStoragePassword(vendor.browser))); override != "" {
		return override, nil
	}

	if pw, err := keyring.Get(vendor.safeStorageService, vendor.safeStorageAccount); err == nil && strings.TrimSpace(pw) != "" {
		return strings.TrimSpace(pw), nil
	}

	password, err := macosReadKeychainPassword(timeout, vendor.safeStorageService, vendor.safeStorageAccount)
	if err != nil {
		return "", []string{fmt.Sprintf("livecookie: macOS keychain read failed (%s): %v", vendor.safeStorageService, err)}
	}
	password = strings.TrimSpace(password)
	if password == "" {
		return "", []string{fmt.Sprintf("livecookie: macOS keychain returned an empty %s password", vendor.safeStorageService)}
	}
	return password, nil
}

func macosReadKeychainPassword(timeout time.Duration, service string, account string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	stdout, stderr, err := execCapture(ctx, "security", []string{
		"find-generic-password",
		"-w",
		"-a", account,
		"-s", service,
	})
	if err != nil {
		if stderr != "" {
			return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr))
		}
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}
