package transcribe

import (
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

// Transcriber produces text transcripts from audio files by shelling out to
// the whisper CLI.
type Transcriber struct {
	model   string
	timeout time.Duration
}

func New(model string, timeout time.Duration) *Transcriber {
	return &Transcriber{model: model, timeout: timeout}
}

// TranscriptPath returns where the transcript for an audio file is written.
func TranscriptPath(audioPath string) string {
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".txt"
}

// Transcribe runs whisper against audioPath and returns the path of the
// transcript written next to the audio file. The call is bounded by the
// configured timeout; a wedged transcription is killed and reported as an
// ordinary failure.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	log.Printf("Transcribing %s...", audioPath)
	cmd := execCommandContext(ctx, "whisper",
		audioPath,
		"--model", t.model,
		"--output_format", "txt",
		"--output_dir", filepath.Dir(audioPath),
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("whisper failed for %s: %w, output: %s", audioPath, err, string(output))
	}

	transcriptPath := TranscriptPath(audioPath)
	if _, err := os.Stat(transcriptPath); err != nil {
		return "", fmt.Errorf("whisper produced no transcript at %s: %w", transcriptPath, err)
	}
	log.Printf("Transcription saved to %s", transcriptPath)
	return transcriptPath, nil
}
