// Package chunking splits a participant's message stream into fixed-size windows for extraction.
package chunking

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/gift-recommender/internal/types"
)

// InputError reports an unusable chunking argument
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Chunk is a contiguous window of messages processed as one extraction unit
type Chunk struct {
	Index    int
	Messages []types.Message
}

// Split groups messages into consecutive windows of at most size messages.
// The last window may be smaller. Empty input yields no chunks.
// Example: 25 messages with size=10 produces windows [0..10), [10..20), [20..25).
func Split(messages []types.Message, size int) ([]Chunk, error) {
	if size <= 0 {
		return nil, &InputError{Field: "chunk_size", Message: fmt.Sprintf("must be > 0, got %d", size)}
	}
	if len(messages) == 0 {
		return nil, nil
	}

	chunks := make([]Chunk, 0, (len(messages)+size-1)/size)
	for start := 0; start < len(messages); start += size {
		end := min(start+size, len(messages))
		chunks = append(chunks, Chunk{
			Index:    len(chunks),
			Messages: append([]types.Message(nil), messages[start:end]...),
		})
	}
	return chunks, nil
}

// Render formats the chunk as newline-joined "[YYYY-MM-DD] text" lines
func (c Chunk) Render() string {
	lines := make([]string, 0, len(c.Messages))
	for _, m := range c.Messages {
		lines = append(lines, fmt.Sprintf("[%s] %s", m.Date(), m.Text))
	}
	return strings.Join(lines, "\n")
}

// Start returns the timestamp of the first message, or the zero time for an empty chunk
func (c Chunk) Start() time.Time {
	if len(c.Messages) == 0 {
		return time.Time{}
	}
	return c.Messages[0].Timestamp
}

// End returns the timestamp of the last message, or the zero time for an empty chunk
func (c Chunk) End() time.Time {
	if len(c.Messages) == 0 {
		return time.Time{}
	}
	return c.Messages[len(c.Messages)-1].Timestamp
}
