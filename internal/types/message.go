package types

import "time"

// DateLayout is the day-granularity format used when rendering messages for the model
const DateLayout = "2006-01-02"

// Message is one chat line authored by the analyzed participant
type Message struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

// UndatedLabel replaces the date of messages whose source carries no timestamp
const UndatedLabel = "undated"

// Date renders the message timestamp as YYYY-MM-DD
func (m Message) Date() string {
	if m.Timestamp.IsZero() {
		return UndatedLabel
	}
	return m.Timestamp.Format(DateLayout)
}
