package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Probe reads the container duration of input with ffprobe.
func Probe(ctx context.Context, ffprobeBinary string, input string) (time.Duration, error) {
	args := []string{
		"-v", "error", // Hide debug information
		"-show_format", // Show container information
		"-of", "json",
		input,
	}

	cmd := exec.CommandContext(ctx, ffprobeBinary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return parseProbeDuration(stdout.Bytes())
}

func parseProbeDuration(b []byte) (time.Duration, error) {
	out := struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}{}
	if err := json.Unmarshal(b, &out); err != nil {
		return 0, err
	}
	if out.Format.Duration == "" || out.Format.Duration == "N/A" {
		return 0, nil
	}
	d, err := time.ParseDuration(out.Format.Duration + "s")
	if err != nil {
		return 0, fmt.Errorf("unable to parse format duration: %w", err)
	}
	return d, nil
}
