//go:build windows

package executor

import (
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

// configureProcessGroup creates a new process group so the whole tree can be
// terminated on cancellation.
func configureProcessGroup(cmd *exec.Cmd, grace time.Duration, kill *killTimer) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
	setCancel(cmd, grace, kill, killProcessGroup)
}

// attachToTerminal leaves a verbose child in the console's process group so
// it keeps receiving Ctrl-C. taskkill /T still reaches its whole tree.
func attachToTerminal(cmd *exec.Cmd, grace time.Duration, kill *killTimer) {
	setCancel(cmd, grace, kill, killProcessGroup)
}

// killProcessGroup uses taskkill to terminate the process tree. Windows has no
// SIGTERM equivalent, so graceful only omits /F.
func killProcessGroup(pid int, graceful bool) error {
	args := []string{"/T", "/PID", fmt.Sprintf("%d", pid)}
	if !graceful {
		args = append([]string{"/F"}, args...)
	}
	return exec.Command("taskkill", args...).Run()
}
