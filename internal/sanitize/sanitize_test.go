package sanitize

import "testing"

func TestCategory(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Deep Work", "Deep Work"},
		{"  math_101  ", "math_101"},
		{"İngilizce", "İngilizce"},
		{"<script>alert(1)</script>", "scriptalert1script"},
		{"a;b'c\"d", "abcd"},
		{"side-project", "side-project"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Category(tt.in); got != tt.want {
			t.Errorf("Category(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategoryLength(t *testing.T) {
	long := ""
	for i := 0; i < 40; i++ {
		long += "a"
	}
	got := Category(long)
	if len([]rune(got)) != 30 {
		t.Fatalf("expected 30 runes, got %d", len([]rune(got)))
	}
}

func TestGroupName(t *testing.T) {
	if got := GroupName("Study Buddies!"); got != "Study Buddies" {
		t.Errorf("got %q", got)
	}
}

func TestInviteCode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ab-12cd", "AB12CD"},
		{"  x9 ", "X9"},
		{"abcdefghijkl", "ABCDEFGHIJ"},
	}
	for _, tt := range tests {
		if got := InviteCode(tt.in); got != tt.want {
			t.Errorf("InviteCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUsername(t *testing.T) {
	if got := Username("jane.doe_42"); got != "jane.doe_42" {
		t.Errorf("got %q", got)
	}
	if got := Username("ev@il"); got != "evil" {
		t.Errorf("got %q", got)
	}
}
