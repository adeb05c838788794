package chatlog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/gift-recommender/internal/types"
)

const sampleWhatsApp = `3/1/25, 09:15 - Messages and calls are end-to-end encrypted. No one outside of this chat, not even WhatsApp, can read or listen to them.
3/1/25, 09:16 - Sam Rivera: I really want to get into rock climbing
3/1/25, 09:17 - Alex: You should try the new gym

04/05/25, 18:02 - Sam Rivera: My hands are so dry
this is a continuation line without a header
13/45/25, 10:00 - Sam Rivera: impossible date
4/6/25, 7:45 PM - Sam Rivera:   
4/7/25, 8:00 - Sam Rivera: Sam Rivera: quoting myself - with a dash
4/8/25, 8:00 - Sam Riverasomething: not the same person
`

func TestParseWhatsApp(t *testing.T) {
	messages := ParseWhatsApp(sampleWhatsApp, "Sam Rivera")
	require.Len(t, messages, 3)

	assert.Equal(t, "I really want to get into rock climbing", messages[0].Text)
	assert.Equal(t, time.Date(2025, 3, 1, 9, 16, 0, 0, time.UTC), messages[0].Timestamp)
	assert.Equal(t, "2025-03-01", messages[0].Date())

	assert.Equal(t, "My hands are so dry", messages[1].Text)
	assert.Equal(t, "2025-04-05", messages[1].Date())

	assert.Equal(t, "Sam Rivera: quoting myself - with a dash", messages[2].Text)
}

func TestParseWhatsApp_TwelveHourClock(t *testing.T) {
	messages := ParseWhatsApp("12/24/24, 7:45 PM - Kim: Merry almost Christmas\n12/25/24, 7:45 am - Kim: Merry Christmas", "Kim")
	require.Len(t, messages, 2)

	assert.Equal(t, time.Date(2024, 12, 24, 19, 45, 0, 0, time.UTC), messages[0].Timestamp)
	assert.Equal(t, time.Date(2024, 12, 25, 7, 45, 0, 0, time.UTC), messages[1].Timestamp)
}

func TestParseWhatsApp_UnreadableClockKeepsDate(t *testing.T) {
	messages := ParseWhatsApp("1/2/25, noon - Kim: lunch?", "Kim")
	require.Len(t, messages, 1)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), messages[0].Timestamp)
}

func TestParseWhatsApp_CRLF(t *testing.T) {
	messages := ParseWhatsApp("3/1/25, 09:16 - Kim: one\r\n3/2/25, 09:16 - Kim: two\r\n", "Kim")
	require.Len(t, messages, 2)
	assert.Equal(t, "one", messages[0].Text)
	assert.Equal(t, "two", messages[1].Text)
}

func TestParseWhatsApp_NoMatches(t *testing.T) {
	messages := ParseWhatsApp(sampleWhatsApp, "Nobody")
	assert.NotNil(t, messages)
	assert.Empty(t, messages)

	assert.Empty(t, ParseWhatsApp("", "Sam Rivera"))
}

func TestParseInstagram(t *testing.T) {
	raw := "Sam: hi there\nAlex: hey\nSam I love this band\nSam:   \n  Sam: indented is not a match"

	messages := ParseInstagram(raw, "Sam")
	require.Len(t, messages, 2)

	assert.Equal(t, "hi there", messages[0].Text)
	assert.Equal(t, "Sam I love this band", messages[1].Text)
	assert.True(t, messages[0].Timestamp.IsZero())
	assert.Equal(t, types.UndatedLabel, messages[0].Date())
}

func TestParse_Dispatch(t *testing.T) {
	messages, err := Parse("", sampleWhatsApp, "Sam Rivera")
	require.NoError(t, err)
	assert.Len(t, messages, 3)

	messages, err = Parse("WhatsApp", sampleWhatsApp, "Sam Rivera")
	require.NoError(t, err)
	assert.Len(t, messages, 3)

	messages, err = Parse("instagram", "Kim: hello", "Kim")
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestParse_UnknownFormat(t *testing.T) {
	_, err := Parse("telegram", "anything", "Kim")
	require.Error(t, err)

	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, "telegram", formatErr.Format)
}

func TestParseWithStats(t *testing.T) {
	_, stats, err := ParseWithStats("whatsapp", sampleWhatsApp, "Sam Rivera")
	require.NoError(t, err)

	assert.Equal(t, FormatWhatsApp, stats.Format)
	assert.Equal(t, 9, stats.Lines)
	assert.Equal(t, 3, stats.Messages)
	assert.Equal(t, 6, stats.Skipped)
	assert.Len(t, stats.Hash, 64)

	// Line endings do not change the hash
	_, crlf, err := ParseWithStats("whatsapp", "a\r\nb", "Sam Rivera")
	require.NoError(t, err)
	_, lf, err := ParseWithStats("whatsapp", "a\nb", "Sam Rivera")
	require.NoError(t, err)
	assert.Equal(t, lf.Hash, crlf.Hash)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleWhatsApp), 0o644))

	content, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleWhatsApp, content)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
