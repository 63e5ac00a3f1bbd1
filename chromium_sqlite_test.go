package livecookie

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestChromiumTimeToUnix(t *testing.T) {
	if got := chromiumTimeToUnix(0); got != 0 {
		t.Fatalf("session cookie: want 0 got %d", got)
	}
	// 2022-02-22T10:40:00Z
	if got := chromiumTimeToUnix((1645526400 + chromiumEpochOffsetSeconds) * 1_000_000); got != 1645526400 {
		t.Fatalf("want 1645526400 got %d", got)
	}
	if got := chromiumTimeToUnix(1); got != 0 {
		t.Fatalf("pre-unix-epoch: want 0 got %d", got)
	}
}

func TestChromiumSameSiteFromInt(t *testing.T) {
	if got := chromiumSameSiteFromInt(2); got != SameSiteStrict {
		t.Fatalf("want Strict got %v", got)
	}
	if got := chromiumSameSiteFromInt(1); got != SameSiteLax {
		t.Fatalf("want Lax got %v", got)
	}
	if got := chromiumSameSiteFromInt(0); got != SameSiteNone {
		t.Fatalf("want None got %v", got)
	}
}

func TestChromiumOpenSnapshotReadOnly_CopiesSidecars(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "Cookies")
	for _, name := range []string{"Cookies", "Cookies-wal", "Cookies-shm"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	snap, cleanup, _, err := chromiumOpenSnapshotReadOnly(context.Background(), dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(cleanup)

	for _, suffix := range []string{"", "-wal", "-shm"} {
		if !fileExists(snap + suffix) {
			t.Fatalf("snapshot missing %q", "Cookies"+suffix)
		}
	}
}

func writeProfile(t *testing.T, rows []chromiumCookieRow, metaVersion int64) (profileDir, dbPath string) {
	t.Helper()
	profileDir = t.TempDir()
	wrapped := base64.StdEncoding.EncodeToString(append([]byte("DPAPI"), []byte("opaque-blob")...))
	if err := os.WriteFile(filepath.Join(profileDir, "Local State"),
		[]byte(`{"os_crypt":{"encrypted_key":"`+wrapped+`"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	dbPath = filepath.Join(profileDir, "Default", "Network", "Cookies")
	writeTestCookiesDB(t, dbPath, metaVersion, rows)
	return profileDir, dbPath
}

func TestDirectChromiumRead_DecryptsRows(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 32)
	nonce := bytes.Repeat([]byte{0x22}, 12)
	// Meta 24 stores require a 32-byte hash before the value.
	plain := append(bytes.Repeat([]byte{0xAA}, 32), []byte("secret-token")...)
	expires := (1645526400 + chromiumEpochOffsetSeconds) * int64(1_000_000)

	profileDir, dbPath := writeProfile(t, []chromiumCookieRow{
		{hostKey: ".example.com", name: "sid", path: "/", expiresUTC: expires, isSecure: true, isHTTPOnly: true, sameSite: 1,
			encryptedValue: encryptAESGCMForTest(t, "v10", key, nonce, plain)},
		{hostKey: "example.com", name: "theme", path: "/", value: "dark"},
		{hostKey: "other.org", name: "foreign", path: "/", value: "x"},
	}, 24)

	orig := newSecretUnwrapper
	newSecretUnwrapper = func() secretUnwrapper { return &spyUnwrapper{out: key} }
	t.Cleanup(func() { newSecretUnwrapper = orig })
	t.Setenv(envKeySafeStoragePassword(BrowserChrome), "test-password")

	cookies, warnings, err := directChromiumRead(context.Background(),
		chromiumVendorForBrowser(BrowserChrome), profileDir, dbPath, "example.com", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(cookies) != 2 {
		t.Fatalf("want 2 cookies got %d", len(cookies))
	}

	var sid Cookie
	for _, c := range cookies {
		if c.Name == "sid" {
			sid = c
		}
	}
	if sid.Value != "secret-token" {
		t.Fatalf("want %q got %q", "secret-token", sid.Value)
	}
	if sid.Expires != 1645526400 {
		t.Fatalf("want expiry 1645526400 got %d", sid.Expires)
	}
	if !sid.Secure || !sid.HTTPOnly || sid.SameSite != SameSiteLax {
		t.Fatalf("attributes lost: %+v", sid)
	}
	if sid.Source.Strategy != StrategyDirectDatabaseRead || sid.Source.StorePath != dbPath {
		t.Fatalf("bad source: %+v", sid.Source)
	}
}

func TestDirectChromiumRead_SubdomainQueryReachesParentCookies(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 32)
	profileDir, dbPath := writeProfile(t, []chromiumCookieRow{
		{hostKey: ".example.com", name: "parent", path: "/", value: "shared"},
		{hostKey: "app.example.com", name: "local", path: "/", value: "own"},
		{hostKey: "other.example.org", name: "foreign", path: "/", value: "x"},
	}, 24)

	orig := newSecretUnwrapper
	newSecretUnwrapper = func() secretUnwrapper { return &spyUnwrapper{out: key} }
	t.Cleanup(func() { newSecretUnwrapper = orig })
	t.Setenv(envKeySafeStoragePassword(BrowserChrome), "test-password")

	cookies, _, err := directChromiumRead(context.Background(),
		chromiumVendorForBrowser(BrowserChrome), profileDir, dbPath, "app.example.com", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if len(cookies) != 2 {
		t.Fatalf("want parent and local cookies, got %+v", cookies)
	}
	names := map[string]bool{}
	for _, c := range cookies {
		names[c.Name] = true
	}
	if !names["parent"] || !names["local"] {
		t.Fatalf("want parent+local, got %+v", names)
	}
}

func TestDirectChromiumRead_AppBoundValueAborts(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 32)
	profileDir, dbPath := writeProfile(t, []chromiumCookieRow{
		{hostKey: "example.com", name: "abe", path: "/",
			encryptedValue: append([]byte("v20"), bytes.Repeat([]byte{0x00}, 60)...)},
	}, 24)

	orig := newSecretUnwrapper
	newSecretUnwrapper = func() secretUnwrapper { return &spyUnwrapper{out: key} }
	t.Cleanup(func() { newSecretUnwrapper = orig })
	t.Setenv(envKeySafeStoragePassword(BrowserChrome), "test-password")

	_, _, err := directChromiumRead(context.Background(),
		chromiumVendorForBrowser(BrowserChrome), profileDir, dbPath, "example.com", time.Second)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("want ErrUnsupported got %v", err)
	}
}

func TestDirectChromiumRead_SkipsUndecryptableRow(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 32)
	wrongKey := bytes.Repeat([]byte{0x33}, 32)
	nonce := bytes.Repeat([]byte{0x22}, 12)

	profileDir, dbPath := writeProfile(t, []chromiumCookieRow{
		{hostKey: "example.com", name: "good", path: "/",
			encryptedValue: encryptAESGCMForTest(t, "v10", key, nonce, []byte("ok"))},
		{hostKey: "example.com", name: "bad", path: "/",
			encryptedValue: encryptAESGCMForTest(t, "v10", wrongKey, nonce, []byte("nope"))},
	}, 20)

	orig := newSecretUnwrapper
	newSecretUnwrapper = func() secretUnwrapper { return &spyUnwrapper{out: key} }
	t.Cleanup(func() { newSecretUnwrapper = orig })
	t.Setenv(envKeySafeStoragePassword(BrowserChrome), "test-password")

	cookies, warnings, err := directChromiumRead(context.Background(),
		chromiumVendorForBrowser(BrowserChrome), profileDir, dbPath, "example.com", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if len(cookies) != 1 || cookies[0].Name != "good" {
		t.Fatalf("want only the good cookie, got %+v", cookies)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "bad") {
		t.Fatalf("want one skip warning naming the cookie, got %v", warnings)
	}
}
