package process

import (
	"os/exec"
	"syscall"
)

// createCommand creates a *exec.Cmd running command through cmd.exe.
//
// The command line is passed verbatim so cmd.exe sees the same
// quoting the user typed, and the child gets its own process group
// (CREATE_NEW_PROCESS_GROUP) so a CTRL+C in our console is not
// delivered to it behind the supervisor's back
func createCommand(command string) *exec.Cmd {
	cmd := exec.Command("cmd.exe")
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CmdLine:       `cmd.exe /c ` + command,
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
	return cmd
}
