package chat

import (
	"strings"

	"unlockdesk/pkg/models"
)

// QuickReplyIndex is a command -> quick reply lookup built from a
// master's stored quick replies.
type QuickReplyIndex map[string]models.QuickReply

// BuildIndex normalizes commands and indexes the replies by them.
func BuildIndex(replies []models.QuickReply) QuickReplyIndex {
	idx := make(QuickReplyIndex, len(replies))
	for _, r := range replies {
		cmd := NormalizeCommand(r.Command)
		if cmd == "" {
			continue
		}
		idx[cmd] = r
	}
	return idx
}

// NormalizeCommand strips a leading slash and case-folds the token.
func NormalizeCommand(v string) string {
	raw := strings.TrimSpace(v)
	if raw == "" {
		return ""
	}
	raw = strings.TrimPrefix(raw, "/")
	return strings.ToLower(raw)
}

// splitCommand parses "/cmd tail..." input. It returns ok=false for
// plain text, empty commands and the "//" escape form.
func splitCommand(text string) (cmd, tail string, ok bool) {
	if !strings.HasPrefix(text, "/") || strings.HasPrefix(text, "//") {
		return "", "", false
	}
	first := text
	if i := strings.IndexByte(text, ' '); i >= 0 {
		first = text[:i]
	}
	cmd = NormalizeCommand(first)
	if cmd == "" {
		return "", "", false
	}
	tail = strings.TrimSpace(text[len(first):])
	return cmd, tail, true
}

// ResolveText expands quick-reply command sugar in a drafted message.
// Only masters have commands; for everyone else the text passes through
// trimmed. "//x" escapes to the literal "/x". A matched "/cmd tail"
// becomes the stored reply text with the tail appended as a new
// paragraph; unmatched commands are sent as literal text unchanged.
func ResolveText(raw string, isMaster bool, idx QuickReplyIndex) string {
	text := strings.TrimSpace(raw)
	if !isMaster || text == "" {
		return text
	}
	if strings.HasPrefix(text, "//") {
		return text[1:]
	}
	cmd, tail, ok := splitCommand(text)
	if !ok {
		return text
	}
	matched, found := idx[cmd]
	if !found {
		return text
	}
	if tail != "" {
		return matched.Text + "\n\n" + tail
	}
	return matched.Text
}
