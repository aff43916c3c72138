//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// createCommand creates a *exec.Cmd running command through sh, as
// the leader of a new process group
func createCommand(command string) *exec.Cmd {
	cmd := exec.Command("sh", "-c", command)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return cmd
}
