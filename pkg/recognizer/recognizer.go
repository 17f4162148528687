// Package recognizer runs the external ASR tool and parses its word-level
// output into patchwork-timeline tokens.
package recognizer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"patchwork-transcriber/pkg/timeline"
)

type Runner struct {
	// command is invoked as `command <wav> <out.json>`, the contract of the
	// wrapped Kaldi experiment's run.sh.
	command string
}

func New(command string) *Runner {
	return &Runner{command: command}
}

// Recognize transcribes wav and returns the tokens in the given unit,
// re-sorted by time. The recognizer writes JSON to a file inside workDir;
// workDir cleanup is the caller's job.
func (r *Runner) Recognize(ctx context.Context, wav, workDir string, unit timeline.TimeUnit) ([]timeline.Token, error) {
	out := filepath.Join(workDir, "transcript.json")
	cmd := exec.CommandContext(ctx, r.command, wav, out)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("recognizer failed: %s", msg)
		}
		return nil, fmt.Errorf("recognizer failed: %w", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("read recognizer output: %w", err)
	}
	return Parse(data, unit)
}
