package services

import "strings"

const markdownSpecials = "_*[]()~`>#+-=|{}.!"

// EscapeMarkdown backslash-escapes every Telegram Markdown special character.
func EscapeMarkdown(s string) string {
	if !strings.ContainsAny(s, markdownSpecials) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if strings.ContainsRune(markdownSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
