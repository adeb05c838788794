package chatlog

import (
	"strings"
	"time"

	"github.com/jonathan/gift-recommender/internal/types"
)

// encryptionBanner marks the system line WhatsApp puts at the top of every export
const encryptionBanner = "Messages and calls are end-to-end encrypted"

// whatsAppDateLayout accepts one- or two-digit month and day, e.g. 3/1/25 and 03/01/25
const whatsAppDateLayout = "1/2/06"

// Newer exports put a narrow no-break space before AM/PM
var whatsAppTimeLayouts = []string{"15:04", "3:04 PM", "3:04 pm", "3:04\u202fPM", "3:04\u202fpm"}

// ParseWhatsApp extracts participant's messages from a WhatsApp export.
// Lines look like "3/1/25, 14:30 - Name: text". Blank lines, the encryption
// banner, lines with an unreadable date, other authors and empty bodies are skipped.
func ParseWhatsApp(raw, participant string) []types.Message {
	messages, _, _ := ParseWithStats(string(FormatWhatsApp), raw, participant)
	return messages
}

func parseWhatsAppLine(line, participant string) (types.Message, bool) {
	if strings.Contains(line, encryptionBanner) {
		return types.Message{}, false
	}

	header, content, found := strings.Cut(line, " - ")
	if !found {
		return types.Message{}, false
	}

	datePart, timePart, _ := strings.Cut(header, ", ")
	date, err := time.Parse(whatsAppDateLayout, strings.TrimSpace(datePart))
	if err != nil {
		return types.Message{}, false
	}
	timestamp := withClock(date, strings.TrimSpace(timePart))

	text, ok := strings.CutPrefix(content, participant+":")
	if !ok {
		return types.Message{}, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return types.Message{}, false
	}

	return types.Message{Timestamp: timestamp, Text: text}, true
}

// withClock adds the time of day to date when it can be read; otherwise date is returned as is
func withClock(date time.Time, clock string) time.Time {
	for _, layout := range whatsAppTimeLayouts {
		if t, err := time.Parse(layout, clock); err == nil {
			return date.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
		}
	}
	return date
}
