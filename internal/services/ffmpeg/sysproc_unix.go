//go:build unix

package ffmpeg

import (
	"os/exec"
	"syscall"
)

// detach starts the tool in its own process group so a terminal interrupt
// reaches only downconv.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
