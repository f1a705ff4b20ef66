//go:build !unix

package ytdlp

import "os/exec"

func detach(*exec.Cmd) {}
