package engine

import (
	"html"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
	xhtml "golang.org/x/net/html"
)

// User-Agent strings used across HTTP clients.
const (
	UserAgentBot    = "GoTranscript/1.0"
	UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// CleanHTML strips markup from a caption fragment and decodes entities.
// Timedtext bodies are often double-escaped (&amp;#39;), so entities are
// unescaped once before tokenizing.
func CleanHTML(s string) string {
	if s == "" {
		return ""
	}
	z := xhtml.NewTokenizer(strings.NewReader(html.UnescapeString(s)))
	var sb strings.Builder
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return CollapseSpace(sb.String())
		case xhtml.TextToken:
			sb.Write(z.Text())
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				sb.WriteByte(' ')
			}
		}
	}
}

// CollapseSpace replaces every whitespace run (including newlines) with one space and trims.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate returns at most the first n runes of s.
func Truncate(s string, n int) string {
	return strutil.TruncateWith(s, n, "")
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}
