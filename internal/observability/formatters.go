// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/gift-recommender/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintChunkPlan outputs how the message stream was split for extraction.
func (p *Printer) PrintChunkPlan(messages, chunks, size int) {
	p.printBox("CHUNK PLAN", fmt.Sprintf("Messages:   %d\nChunk size: %d\nChunks:     %d", messages, size, chunks))
}

// PrintSignalProfile outputs a human-readable summary of the merged profile.
func (p *Printer) PrintSignalProfile(profile types.SignalProfile) {
	counts := profile.Counts()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Wishes: %d  Problems: %d  Enthusiasm: %d  Values: %d\n",
		counts.Wishes, counts.Problems, counts.Enthusiasm, counts.Values))

	if len(profile.DirectWishSignals) > 0 {
		sb.WriteString("\nWishes:\n")
		count := min(len(profile.DirectWishSignals), maxItemsToShow)
		for _, w := range profile.DirectWishSignals[:count] {
			sb.WriteString(fmt.Sprintf("  • %s (%d/5)\n", w.Item, w.Strength))
		}
		writeMore(&sb, len(profile.DirectWishSignals))
	}

	if len(profile.Problems) > 0 {
		sb.WriteString("\nProblems:\n")
		count := min(len(profile.Problems), maxItemsToShow)
		for _, pr := range profile.Problems[:count] {
			sb.WriteString(fmt.Sprintf("  • %q (%d/5)\n", pr.Quote, pr.Severity))
		}
		writeMore(&sb, len(profile.Problems))
	}

	if len(profile.EnthusiasmSignals) > 0 {
		sb.WriteString("\nEnthusiasm:\n")
		count := min(len(profile.EnthusiasmSignals), maxItemsToShow)
		for _, m := range profile.EnthusiasmSignals[:count] {
			sb.WriteString(fmt.Sprintf("  • %s (%d/5, %d quotes)\n", m.Topic, m.Intensity, len(m.Quotes)))
		}
		writeMore(&sb, len(profile.EnthusiasmSignals))
	}

	if len(profile.Values) > 0 {
		sb.WriteString("\nValues:\n")
		count := min(len(profile.Values), maxItemsToShow)
		for _, v := range profile.Values[:count] {
			sb.WriteString(fmt.Sprintf("  • %s (%d/5)\n", v.Value, v.Intensity))
		}
		writeMore(&sb, len(profile.Values))
	}

	p.printBox("SIGNAL PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGiftIdeas outputs every recommended gift with its match score.
func (p *Printer) PrintGiftIdeas(ideas []types.GiftIdea) {
	if len(ideas) == 0 {
		p.printBox("GIFT IDEAS", "No gift ideas could be recovered")
		return
	}

	var sb strings.Builder
	for i, idea := range ideas {
		sb.WriteString(fmt.Sprintf("#%d  %s", i+1, idea.Name))
		if idea.MatchScore > 0 {
			sb.WriteString(fmt.Sprintf("  [%d/5]", idea.MatchScore))
		}
		sb.WriteString("\n")
		if idea.Description != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", idea.Description))
		}
		if idea.Personalization != "" {
			sb.WriteString(fmt.Sprintf("    ✎ %s\n", idea.Personalization))
		}
		if i < len(ideas)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("GIFT IDEAS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDiagnostics outputs the non-fatal failures recorded during a run.
func (p *Printer) PrintDiagnostics(diagnostics []types.Diagnostic) {
	if len(diagnostics) == 0 {
		return
	}

	var sb strings.Builder
	for _, d := range diagnostics {
		if d.Chunk >= 0 {
			sb.WriteString(fmt.Sprintf("⚠ %s chunk %d: %s\n", d.Stage, d.Chunk, d.Message))
		} else {
			sb.WriteString(fmt.Sprintf("⚠ %s: %s\n", d.Stage, d.Message))
		}
	}

	p.printBox(fmt.Sprintf("DIAGNOSTICS (%d)", len(diagnostics)), strings.TrimSuffix(sb.String(), "\n"))
}

func writeMore(sb *strings.Builder, total int) {
	if total > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", total-maxItemsToShow))
	}
}
