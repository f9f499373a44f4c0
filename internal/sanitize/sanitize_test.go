package sanitize

import "testing"

func TestNormalizePunctuation(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"“hello” ‘world’", "hello world"},
		{"em—dash en–dash", "em-dash en-dash"},
		{"wait…", "wait..."},
		{"f(x) = {y}", "f<x> : <y>"},
		{`path\to/file "quoted" 'single'`, "pathtofile quoted single"},
	}
	for _, tc := range tests {
		if got := NormalizePunctuation(tc.in); got != tc.want {
			t.Errorf("NormalizePunctuation(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello, World! 123", "Hello, World! 123"},
		{"keep\nnewlines\n", "keep\nnewlines\n"},
		{"strip éüñ accents", "strip  accents"},
		{"emoji \U0001f600 gone", "emoji  gone"},
		{"allowed: [](),.:;!?@%&-+=*", "allowed: [](),.:;!?@%&-+=*"},
	}
	for _, tc := range tests {
		if got := Filter(tc.in); got != tc.want {
			t.Errorf("Filter(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripModelNoise(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"**bold** and `code`", "bold and code"},
		{"1. one\n\n\n2. two", "1. one\n2. two"},
		{"  padded  ", "padded"},
		{"a\n   \nb", "a\nb"},
	}
	for _, tc := range tests {
		if got := StripModelNoise(tc.in); got != tc.want {
			t.Errorf("StripModelNoise(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanOutputStaysInAllowedSet(t *testing.T) {
	in := "Café “résumé” (draft) — 50% done!"
	got := Clean(in)
	if got != Filter(got) {
		t.Errorf("Clean output %q contains disallowed characters", got)
	}
}
