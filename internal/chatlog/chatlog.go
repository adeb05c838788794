// Package chatlog turns exported chat transcripts into the dated messages of one participant.
// Malformed lines are skipped; a transcript never fails to parse as a whole.
package chatlog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/gift-recommender/internal/types"
)

// Format names a supported export format
type Format string

const (
	FormatWhatsApp  Format = "whatsapp"
	FormatInstagram Format = "instagram"
)

// FormatError reports an export format that has no parser
type FormatError struct {
	Format string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported chat format %q (want %q or %q)", e.Format, FormatWhatsApp, FormatInstagram)
}

// Stats summarizes one parse
type Stats struct {
	Format   Format `json:"format"`
	Lines    int    `json:"lines"`
	Messages int    `json:"messages"`
	Skipped  int    `json:"skipped"`
	Hash     string `json:"hash"` // SHA256 hex digest of the normalized transcript
}

// Parse selects the messages written by participant. An empty format means WhatsApp.
func Parse(format, raw, participant string) ([]types.Message, error) {
	messages, _, err := ParseWithStats(format, raw, participant)
	return messages, err
}

// ParseWithStats is Parse plus line accounting for the transcript
func ParseWithStats(format, raw, participant string) ([]types.Message, Stats, error) {
	var parseLine func(line, participant string) (types.Message, bool)
	f := Format(strings.ToLower(strings.TrimSpace(format)))
	switch f {
	case "", FormatWhatsApp:
		f = FormatWhatsApp
		parseLine = parseWhatsAppLine
	case FormatInstagram:
		parseLine = parseInstagramLine
	default:
		return nil, Stats{}, &FormatError{Format: format}
	}

	content := normalizeLineEndings(raw)
	stats := Stats{Format: f, Hash: computeHash(content)}
	messages := []types.Message{}
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		stats.Lines++
		msg, ok := parseLine(line, participant)
		if !ok {
			stats.Skipped++
			continue
		}
		messages = append(messages, msg)
	}
	stats.Messages = len(messages)
	return messages, stats, nil
}

// ReadFile loads a transcript from disk
func ReadFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("chat file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read chat file: %w", err)
	}
	return string(content), nil
}

// normalizeLineEndings converts CRLF and CR line endings to LF
func normalizeLineEndings(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
