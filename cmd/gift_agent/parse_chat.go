package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/gift-recommender/internal/chatlog"
	"github.com/jonathan/gift-recommender/internal/types"
)

// parsedMessage is one extracted message as written by parse-chat
type parsedMessage struct {
	Date      string `json:"date"`
	Timestamp string `json:"timestamp,omitempty"`
	Text      string `json:"text"`
}

// parseChatOutput is the JSON document written by parse-chat
type parseChatOutput struct {
	Participant string          `json:"participant"`
	Stats       chatlog.Stats   `json:"stats"`
	Messages    []parsedMessage `json:"messages"`
}

func newParseChatCmd() *cobra.Command {
	var (
		inputFile   string
		outputFile  string
		participant string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "parse-chat",
		Short: "Extract one participant's messages from a chat export",
		Long:  "Parse a WhatsApp or Instagram chat export and write the messages authored by one participant as JSON. No model calls are made.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inputFile == "" {
				return fmt.Errorf("--in is required")
			}
			if participant == "" {
				return fmt.Errorf("--participant is required")
			}

			raw, err := chatlog.ReadFile(inputFile)
			if err != nil {
				return err
			}

			messages, stats, err := chatlog.ParseWithStats(format, raw, participant)
			if err != nil {
				return err
			}

			output := parseChatOutput{
				Participant: participant,
				Stats:       stats,
				Messages:    toParsedMessages(messages),
			}
			jsonBytes, err := json.MarshalIndent(output, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}

			if outputFile == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
				return err
			}
			if err := os.WriteFile(outputFile, append(jsonBytes, '\n'), 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d of %d lines for %s (%d skipped)\n",
				stats.Messages, stats.Lines, participant, stats.Skipped)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFile, "in", "i", "", "Path to exported chat transcript")
	cmd.Flags().StringVarP(&outputFile, "out", "o", "", "Path to output JSON file (default: stdout)")
	cmd.Flags().StringVarP(&participant, "participant", "p", "", "Name of the participant whose messages to keep")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Chat export format: whatsapp (default) or instagram")

	return cmd
}

func toParsedMessages(messages []types.Message) []parsedMessage {
	out := make([]parsedMessage, 0, len(messages))
	for _, m := range messages {
		pm := parsedMessage{Date: m.Date(), Text: m.Text}
		if !m.Timestamp.IsZero() {
			pm.Timestamp = m.Timestamp.Format("2006-01-02T15:04:05")
		}
		out = append(out, pm)
	}
	return out
}
