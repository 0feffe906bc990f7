package util

import "testing"

func TestGenerateUUID(t *testing.T) {
	id := GenerateUUID()
	if len(id) != 32 {
		t.Fatalf("expected 32 hex chars, got %q", id)
	}
	if id == GenerateUUID() {
		t.Fatal("expected distinct ids")
	}
}

func TestNewSessionID(t *testing.T) {
	id := NewSessionID()
	if !IsSessionID(id) {
		t.Fatalf("expected a valid uuid, got %q", id)
	}
	if IsSessionID("not-a-session") {
		t.Fatal("expected invalid id to be rejected")
	}
}

func TestTruncateString(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"a resistor opposes current", 10, "a resis..."},
		{"abcdef", 3, "abc"},
		{"Ω Ω Ω Ω Ω", 5, "Ω ..."},
	}
	for _, tc := range cases {
		if got := TruncateString(tc.in, tc.max); got != tc.want {
			t.Errorf("TruncateString(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
