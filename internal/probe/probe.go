package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Media preflight via ffprobe: files the player will not be able to
// play are rejected before any player process is spawned.

// ErrUnplayable reports media without a usable duration.
var ErrUnplayable = errors.New("cannot play this media file")

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Args builds the ffprobe invocation for path.
func Args(path string) []string {
	return []string{"ffprobe", "-v", "quiet", "-print_format", "json", "-show_format", path}
}

// Duration asks ffprobe for the media duration.
func Duration(ctx context.Context, path string) (time.Duration, error) {
	args := Args(path)
	out, err := exec.CommandContext(ctx, args[0], args[1:]...).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseDuration(out)
}

func parseDuration(out []byte) (time.Duration, error) {
	var probed ffprobeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return 0, fmt.Errorf("parsing ffprobe output: %w", err)
	}
	if probed.Format.Duration == "" {
		return 0, ErrUnplayable
	}
	sec, err := strconv.ParseFloat(probed.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing ffprobe duration %q: %w", probed.Format.Duration, err)
	}
	if sec <= 0 {
		return 0, ErrUnplayable
	}
	return time.Duration(sec * float64(time.Second)), nil
}
