package chatlog

import (
	"strings"

	"github.com/jonathan/gift-recommender/internal/types"
)

// ParseInstagram extracts participant's messages from an Instagram transcript.
// Every line starting with the participant's name is kept; a leading "Name:"
// is stripped. Instagram copies carry no timestamps, so messages are undated.
func ParseInstagram(raw, participant string) []types.Message {
	messages, _, _ := ParseWithStats(string(FormatInstagram), raw, participant)
	return messages
}

func parseInstagramLine(line, participant string) (types.Message, bool) {
	if participant == "" || !strings.HasPrefix(line, participant) {
		return types.Message{}, false
	}

	text := line
	if rest, ok := strings.CutPrefix(line, participant+":"); ok {
		text = rest
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return types.Message{}, false
	}
	return types.Message{Text: text}, true
}
