//go:build !windows

package executor

import (
	"os/exec"
	"syscall"
	"time"
)

// configureProcessGroup puts a captured child in its own process group so that
// cancellation reaches everything it spawned, e.g. the processes behind a
// `docker compose logs -f` pipeline.
func configureProcessGroup(cmd *exec.Cmd, grace time.Duration, kill *killTimer) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true, // Create new process group
		Pgid:    0,    // Use process PID as process group ID
	}
	setCancel(cmd, grace, kill, killProcessGroup)
}

// attachToTerminal keeps a verbose child in the invoking process group, which
// owns the terminal. A background group would be stopped by SIGTTIN/SIGTTOU as
// soon as the child read stdin or changed terminal modes. Ctrl-C reaches the
// child through the terminal; cancellation signals the child itself.
func attachToTerminal(cmd *exec.Cmd, grace time.Duration, kill *killTimer) {
	setCancel(cmd, grace, kill, killProcess)
}

// killProcessGroup signals an entire process group: SIGTERM when graceful,
// SIGKILL otherwise.
func killProcessGroup(pid int, graceful bool) error {
	return syscall.Kill(-pid, terminationSignal(graceful))
}

func killProcess(pid int, graceful bool) error {
	return syscall.Kill(pid, terminationSignal(graceful))
}

func terminationSignal(graceful bool) syscall.Signal {
	if graceful {
		return syscall.SIGTERM
	}
	return syscall.SIGKILL
}
