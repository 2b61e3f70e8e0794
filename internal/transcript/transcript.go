// Package transcript renders the message log for display. It is a pure
// projection of session state and keeps no state of its own.
package transcript

import (
	"strings"

	"querychat/internal/session"
)

const (
	userPrefix = "[vous] "
	botPrefix  = "[bot]  "

	failedSuffix = " (non envoyé)"
	typingLine   = botPrefix + "…"
)

// Render formats the log one message per line, marking failed sends and
// appending the typing indicator while the bot is "typing".
func Render(entries []session.Entry, typing bool) string {
	var sb strings.Builder
	for _, e := range entries {
		if e.IsUserMessage {
			sb.WriteString(userPrefix)
		} else {
			sb.WriteString(botPrefix)
		}
		sb.WriteString(e.Content)
		if e.Delivery == session.Failed {
			sb.WriteString(failedSuffix)
		}
		sb.WriteString("\n")
	}
	if typing {
		sb.WriteString(typingLine)
		sb.WriteString("\n")
	}
	return sb.String()
}
