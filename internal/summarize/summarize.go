package summarize

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

var execCommandContext = exec.CommandContext

// Options shapes the summarization prompt.
type Options struct {
	// Length is "short", "medium" or "long". Anything else falls back to
	// medium.
	Length string
}

// Summarizer produces episode summaries by piping the transcript through the
// gemini CLI on stdin.
type Summarizer struct {
	model   string
	timeout time.Duration
}

func New(model string, timeout time.Duration) *Summarizer {
	return &Summarizer{model: model, timeout: timeout}
}

// SummaryPath returns where the summary for a transcript is written. The
// suffix is derived here once; stored records carry the resulting path
// instead of re-deriving it later.
func SummaryPath(transcriptPath string) string {
	return strings.TrimSuffix(transcriptPath, filepath.Ext(transcriptPath)) + ".summary.txt"
}

func lengthInstruction(length string) string {
	switch length {
	case "short":
		return "Keep the summary to a single short paragraph."
	case "long":
		return "Write a detailed summary covering every major topic discussed."
	default:
		return "Write a concise summary of the main points."
	}
}

// Summarize reads the transcript, asks the model for a summary and writes it
// to SummaryPath(transcriptPath). Returns the summary text.
func (s *Summarizer) Summarize(ctx context.Context, transcriptPath string, opts Options) (string, error) {
	content, err := os.ReadFile(transcriptPath)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript %s: %w", transcriptPath, err)
	}

	prompt := fmt.Sprintf(
		"Please summarize the following podcast transcript. %s\n\n%s\n\nSummary:",
		lengthInstruction(opts.Length), string(content),
	)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := execCommandContext(ctx, "gemini", "--model", s.model)
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("gemini failed for %s: %w, stderr: %s", transcriptPath, err, stderr.String())
	}

	summary := extractSummary(stdout.String())
	if summary == "" {
		return "", fmt.Errorf("gemini returned no summary for %s", transcriptPath)
	}

	summaryPath := SummaryPath(transcriptPath)
	if err := os.WriteFile(summaryPath, []byte(summary), 0o644); err != nil {
		return "", fmt.Errorf("failed to write summary %s: %w", summaryPath, err)
	}
	log.Printf("Summary saved to %s", summaryPath)
	return summary, nil
}

// extractSummary takes the last non-empty output line. The CLI prints a
// credentials notice on startup that must not be mistaken for the summary.
func extractSummary(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" && !strings.HasPrefix(line, "Loaded cached credentials.") {
			return line
		}
	}
	return ""
}
