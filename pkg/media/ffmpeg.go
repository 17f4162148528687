// Package media shells out to ffmpeg for the two audio operations the
// pipeline needs: resampling to recognizer-ready WAV and building the
// patchwork file by splicing speech intervals with silence between them.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

type FFmpeg struct {
	bin string
}

func New(bin string) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{bin: bin}
}

// Resample converts in to a mono 16 kHz WAV inside workDir and returns the
// output path.
func (f *FFmpeg) Resample(ctx context.Context, in, workDir string) (string, error) {
	out := filepath.Join(workDir, "resampled_16k.wav")
	if err := f.run(ctx, resampleArgs(in, out)); err != nil {
		return "", fmt.Errorf("resample %s: %w", filepath.Base(in), err)
	}
	return out, nil
}

// TrimAndSplice chops the given original-timeline intervals (seconds) out of
// in and concatenates them with gapSec of silence between consecutive chops.
// The output timing must match the patchwork layout exactly; nothing here
// re-verifies that, it follows from chop durations plus the fixed gap.
func (f *FFmpeg) TrimAndSplice(ctx context.Context, in string, intervals [][2]float64, gapSec float64, workDir string) (string, error) {
	if len(intervals) == 0 {
		return "", fmt.Errorf("trim and splice: no intervals")
	}

	pieces := make([]string, 0, 2*len(intervals)-1)
	silence := filepath.Join(workDir, "gap.wav")
	if gapSec > 0 && len(intervals) > 1 {
		if err := f.run(ctx, silenceArgs(gapSec, silence)); err != nil {
			return "", fmt.Errorf("generate silence gap: %w", err)
		}
	}
	for i, iv := range intervals {
		chop := filepath.Join(workDir, fmt.Sprintf("chop_%03d.wav", i))
		if err := f.run(ctx, chopArgs(in, iv[0], iv[1], chop)); err != nil {
			return "", fmt.Errorf("chop interval %d [%.3f, %.3f]: %w", i, iv[0], iv[1], err)
		}
		if i > 0 && gapSec > 0 {
			pieces = append(pieces, silence)
		}
		pieces = append(pieces, chop)
	}

	listFile := filepath.Join(workDir, "concat.txt")
	if err := os.WriteFile(listFile, []byte(concatList(pieces)), 0644); err != nil {
		return "", fmt.Errorf("write concat list: %w", err)
	}

	out := filepath.Join(workDir, "patchwork.wav")
	if err := f.run(ctx, concatArgs(listFile, out)); err != nil {
		return "", fmt.Errorf("concatenate patchwork audio: %w", err)
	}
	return out, nil
}

func (f *FFmpeg) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, f.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %s", f.bin, msg)
		}
		return fmt.Errorf("%s: %w", f.bin, err)
	}
	return nil
}

func resampleArgs(in, out string) []string {
	return []string{
		"-y", "-i", in,
		"-ac", "1", "-ar", "16000",
		"-f", "wav",
		out,
	}
}

func chopArgs(in string, startSec, endSec float64, out string) []string {
	return []string{
		"-y", "-i", in,
		"-ss", fmt.Sprintf("%.6f", startSec),
		"-to", fmt.Sprintf("%.6f", endSec),
		"-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1",
		out,
	}
}

func silenceArgs(gapSec float64, out string) []string {
	return []string{
		"-y",
		"-f", "lavfi", "-i", "anullsrc=r=16000:cl=mono",
		"-t", fmt.Sprintf("%.6f", gapSec),
		"-acodec", "pcm_s16le",
		out,
	}
}

func concatArgs(listFile, out string) []string {
	return []string{
		"-y",
		"-f", "concat", "-safe", "0",
		"-i", listFile,
		"-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1",
		out,
	}
}

// concatList renders the ffmpeg concat-demuxer list file. Single quotes in
// paths are escaped the way the demuxer expects.
func concatList(files []string) string {
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(f, "'", "'\\''"))
	}
	return b.String()
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
