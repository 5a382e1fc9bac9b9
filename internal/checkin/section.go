package checkin

import (
	"strings"

	"github.com/slack-go/slack/slackutilsx"
)

// Headings delimiting the three fields of a check-in message.
const (
	HeadingYesterday = "🧐 어제 무엇을 했나요?"
	HeadingToday     = "🫣 오늘 무엇을 할 계획인가요?"
	HeadingComment   = "😉 하고 싶은 말"
)

// EchoMarker follows the author mention on the first line of every check-in the bot posts.
const EchoMarker = "님의 인증입니다"

const editedSuffix = " (수정됨)"

// Sections holds the field values recovered from (or rendered into) a check-in message.
type Sections struct {
	Yesterday string
	Today     string
	Comment   string
}

// ExtractSection returns the text between the line starting with startHeading
// and the next line starting with endHeading. An empty endHeading extracts to
// the end of text. Missing text or start heading yields "".
func ExtractSection(text, startHeading, endHeading string) string {
	if text == "" {
		return ""
	}

	var collected []string
	inSection := false
	for _, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, startHeading) {
			inSection = true
			continue
		}
		if inSection && endHeading != "" && strings.HasPrefix(trimmed, endHeading) {
			break
		}
		if inSection {
			collected = append(collected, line)
		}
	}
	return strings.TrimSpace(strings.Join(collected, "\n"))
}

// Parse extracts all three fields using the canonical headings.
func Parse(text string) Sections {
	return Sections{
		Yesterday: ExtractSection(text, HeadingYesterday, HeadingToday),
		Today:     ExtractSection(text, HeadingToday, HeadingComment),
		Comment:   ExtractSection(text, HeadingComment, ""),
	}
}

// Mention returns the platform token that references userID inside message text.
func Mention(userID string) string {
	return "<@" + userID + ">"
}

// Render builds the message the bot posts on a member's behalf. Section
// values are entity-escaped so member text cannot form links or mentions;
// the author mention is left as a live token.
func Render(userID string, s Sections, edited bool) string {
	var sb strings.Builder

	sb.WriteString(Mention(userID))
	sb.WriteString(EchoMarker)
	if edited {
		sb.WriteString(editedSuffix)
	}
	sb.WriteString("\n\n")

	sb.WriteString(HeadingYesterday + "\n" + slackutilsx.EscapeMessage(s.Yesterday) + "\n\n")
	sb.WriteString(HeadingToday + "\n" + slackutilsx.EscapeMessage(s.Today) + "\n\n")
	sb.WriteString(HeadingComment + "\n" + slackutilsx.EscapeMessage(s.Comment))

	return sb.String()
}

// splitLines splits on \n, \r\n and lone \r so CRLF input behaves like LF input.
// Other Unicode line separators (\v, \f, U+2028 and friends) are kept inside
// the line on purpose: chat clients do not produce them as line breaks.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
