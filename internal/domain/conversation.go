package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ChatMessage is a single turn of a support conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FormatConversation renders chat turns as "Role: content" lines.
func FormatConversation(messages []ChatMessage) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		lines = append(lines, titleCase(strings.TrimSpace(msg.Role))+": "+content)
	}
	return strings.Join(lines, "\n")
}

func titleCase(s string) string {
	if s == "" {
		return "User"
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
