// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Formatting, input reading and suggestion rendering used across commands
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harper/semantic-canvas/internal/models"
)

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// oneLine collapses whitespace so block content fits a table cell
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		mins := int(diff.Minutes())
		return fmt.Sprintf("%dm ago", mins)
	} else if diff < 24*time.Hour {
		hours := int(diff.Hours())
		return fmt.Sprintf("%dh ago", hours)
	} else if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("2006-01-02")
}

// containsString checks if a slice contains a string
func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}

// readInput returns the first arg, the named file, or stdin, in that order
func readInput(args []string, file string, stdin io.Reader) (string, error) {
	var text string
	switch {
	case file != "":
		data, err := os.ReadFile(file) // #nosec G304
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		text = string(data)
	case len(args) > 0:
		text = args[0]
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no text provided")
	}
	return text, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// describeSuggestion renders a suggestion as a single human-readable line
func describeSuggestion(s models.Suggestion) string {
	var action string
	switch a := s.Action.(type) {
	case models.Connect:
		action = fmt.Sprintf("connect %s -> %s", a.BlockID, a.TargetID)
	case models.Relocate:
		action = fmt.Sprintf("move %s near %s", a.BlockID, a.TargetNearID)
	case models.Group:
		action = fmt.Sprintf("group %s", strings.Join(a.BlockIDs, ", "))
	default:
		action = "unknown"
	}
	return fmt.Sprintf("%s (%.0f%%): %s", action, s.Confidence*100, s.Reasoning)
}

func printSuggestions(w io.Writer, suggestions []models.Suggestion) {
	if len(suggestions) == 0 {
		_, _ = fmt.Fprintln(w, "No suggestions")
		return
	}
	for _, s := range suggestions {
		_, _ = fmt.Fprintf(w, "  • %s\n", describeSuggestion(s))
	}
}

func printSimilar(w io.Writer, results []models.SimilarBlock) {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "No similar blocks found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "SCORE\tTYPE\tCONTENT\tBLOCK ID\n")
	_, _ = fmt.Fprintf(tw, "-----\t----\t-------\t--------\n")
	for _, r := range results {
		_, _ = fmt.Fprintf(tw, "%.3f\t%s\t%s\t%s\n",
			r.Similarity,
			r.Block.Type,
			truncate(oneLine(r.Block.Content), 50),
			r.Block.ID)
	}
	_ = tw.Flush()
}
