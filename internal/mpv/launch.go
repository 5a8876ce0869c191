package mpv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
)

// SocketPath returns a fresh per-session IPC socket path.
func SocketPath() string {
	return filepath.Join(os.TempDir(), "vidloop-"+uuid.NewString()+".sock")
}

// Launch starts mpv idle with the IPC server on socket. keep-open makes
// mpv pause at the end of the file instead of unloading it, so a
// finished media can be restarted without a reload.
func Launch(ctx context.Context, binary, socket string) (*exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, binary,
		"--idle=yes",
		"--input-ipc-server="+socket,
		"--keep-open=yes",
		"--force-window=yes",
		"--really-quiet",
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", binary, err)
	}
	return cmd, nil
}
