package livecookie

import (
	"testing"
	"time"
)

func TestNormalizeQueryDomain(t *testing.T) {
	cases := map[string]string{
		"example.com":                      "example.com",
		"https://example.com/path?q=1":     "example.com",
		"http://www.example.com":           "example.com",
		"WWW.Example.COM":                  "example.com",
		"  example.com.  ":                 "example.com",
		"https://sub.example.com:8443/x":   "sub.example.com",
		"wss://socket.example.com/session": "socket.example.com",
	}
	for in, want := range cases {
		if got := normalizeQueryDomain(in); got != want {
			t.Fatalf("%q: want %q got %q", in, want, got)
		}
	}
}

func TestExpandHostCandidates(t *testing.T) {
	cases := map[string][]string{
		"example.com":          {"example.com"},
		"app.example.com":      {"app.example.com", "example.com"},
		"deep.sub.example.com": {"deep.sub.example.com", "sub.example.com", "example.com"},
		"localhost":            {"localhost"},
	}
	for in, want := range cases {
		got := expandHostCandidates(in)
		if len(got) != len(want) {
			t.Fatalf("%q: want %v got %v", in, want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%q: want %v got %v", in, want, got)
			}
		}
	}
}

func TestCookieMatchesDomain(t *testing.T) {
	if !cookieMatchesDomain(".example.com", "example.com") {
		t.Fatal("dot-prefixed cookie domain must match the bare domain")
	}
	if !cookieMatchesDomain("example.com", "www.example.com") {
		t.Fatal("parent cookie domain must match a subdomain query")
	}
	if !cookieMatchesDomain("deep.sub.example.com", "example.com") {
		t.Fatal("subdomain cookie must match a parent-domain query")
	}
	if cookieMatchesDomain("badexample.com", "example.com") {
		t.Fatal("suffix match must be label-anchored")
	}
	if cookieMatchesDomain("example.com", "example.org") {
		t.Fatal("different TLDs must not match")
	}
}

func TestFilterCookiesByDomain(t *testing.T) {
	now := time.Now().Unix()
	cookies := []Cookie{
		{Name: "keep", Domain: ".example.com", Expires: now + 3600},
		{Name: "other-site", Domain: "example.org", Expires: now + 3600},
		{Name: "expired", Domain: "example.com", Expires: now - 3600},
		{Name: "session", Domain: "example.com"},
		{Name: "", Domain: "example.com"},
	}

	got := filterCookiesByDomain(cookies, "example.com", false)
	if len(got) != 2 {
		t.Fatalf("want 2 cookies got %d: %v", len(got), got)
	}
	for _, c := range got {
		if c.Name != "keep" && c.Name != "session" {
			t.Fatalf("unexpected cookie %q", c.Name)
		}
		if c.Path != "/" {
			t.Fatalf("empty path must normalize to /, got %q", c.Path)
		}
	}

	got = filterCookiesByDomain(cookies, "example.com", true)
	if len(got) != 3 {
		t.Fatalf("includeExpired: want 3 cookies got %d", len(got))
	}
}
