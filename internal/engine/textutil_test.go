package engine

import (
	"testing"
	"unicode/utf8"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{"<font color=\"#E5E5E5\">hello</font> world", "hello world"},
		{"it&amp;#39;s fine", "it's fine"},
		{"line one<br>line two", "line one line two"},
		{"  spaced\n\nout  ", "spaced out"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
	}
	for _, tt := range tests {
		if got := CleanHTML(tt.in); got != tt.want {
			t.Errorf("CleanHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCollapseSpace(t *testing.T) {
	if got := CollapseSpace(" a \n b\t\tc "); got != "a b c" {
		t.Errorf("CollapseSpace = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("ab", 3); got != "ab" {
		t.Errorf("Truncate = %q", got)
	}
	// yt-dlp and API error text is often non-ASCII.
	if got := Truncate("ошибка: видео недоступно", 6); got != "ошибка" || !utf8.ValidString(got) {
		t.Errorf("Truncate multibyte = %q", got)
	}
}
