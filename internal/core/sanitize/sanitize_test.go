package sanitize

import "testing"

func TestClean(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain ascii", "Der Kleine Dompfaff", "Der Kleine Dompfaff"},
		{"unicode kept", "Björk — Jóga", "Björk — Jóga"},
		{"nul dropped", "abc\x00def", "abcdef"},
		{"controls dropped", "a\x01\x02b\x1Fc", "abc"},
		{"whitespace controls kept", "a\tb\nc\rd", "a\tb\nc\rd"},
		{"del dropped", "a\x7Fb", "ab"},
		{"c1 dropped", "abc", "abc"},
		{"invalid utf8 dropped", "a\xffb", "ab"},
		{"mixed", "Line\x00 Renaud", "Line Renaud"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Clean(c.in); got != c.want {
				t.Fatalf("Clean(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestCleanFastPathReturnsSameString(t *testing.T) {
	in := "already clean"
	if got := Clean(in); got != in {
		t.Fatalf("fast path changed the string: %q", got)
	}
}

func TestCleanPtr(t *testing.T) {
	if CleanPtr(nil) != nil {
		t.Fatalf("CleanPtr(nil) must stay nil")
	}
	s := "a\x00b"
	got := CleanPtr(&s)
	if got == nil || *got != "ab" {
		t.Fatalf("CleanPtr = %v", got)
	}
}
