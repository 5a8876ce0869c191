package player

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"vidloop/internal/timestamp"
)

// LoopArgs builds the one-shot loop invocation: the external player is
// handed the video and told to repeat between the two offsets. The
// offsets are passed as whole seconds, which is all the legacy format
// can express anyway.
func LoopArgs(binary, video string, start, end timestamp.Offset) []string {
	return []string{
		binary, video,
		"--start-time", strconv.FormatInt(start.Seconds(), 10),
		"--stop-time", strconv.FormatInt(end.Seconds(), 10),
		"--repeat",
	}
}

// SpawnLoop runs the loop invocation and blocks until the player exits
// or ctx is cancelled. The player inherits our stdio.
func SpawnLoop(ctx context.Context, binary, video string, start, end timestamp.Offset) error {
	args := LoopArgs(binary, video, start, end)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("player %s: %w", binary, err)
	}
	return nil
}
