package livecookie

import (
	"strings"
	"testing"
)

func TestFirefoxHostWhereClause_ExpandsParentDomains(t *testing.T) {
	clause, args := firefoxHostWhereClause("app.example.com")
	if strings.Count(clause, "host = ?") != 4 || strings.Count(clause, "host LIKE ?") != 2 {
		t.Fatalf("want clauses for both candidates, got %q", clause)
	}
	want := []any{
		"app.example.com", ".app.example.com", "%.app.example.com",
		"example.com", ".example.com", "%.example.com",
	}
	if len(args) != len(want) {
		t.Fatalf("want %v got %v", want, args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("want %v got %v", want, args)
		}
	}
}

func TestFirefoxHostWhereClause_EmptyDomain(t *testing.T) {
	clause, args := firefoxHostWhereClause("   ")
	if clause != "1=0" || args != nil {
		t.Fatalf("want degenerate clause, got %q %v", clause, args)
	}
}
