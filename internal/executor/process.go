package executor

import (
	"os/exec"
	"sync"
	"time"
)

// killTimer holds the force kill scheduled by a graceful cancel. Once the
// process has been waited for, stop disarms it so a recycled PID is never
// signalled.
type killTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func (k *killTimer) schedule(d time.Duration, f func()) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.stopped {
		return
	}
	k.timer = time.AfterFunc(d, f)
}

func (k *killTimer) stop() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.stopped = true
	if k.timer != nil {
		k.timer.Stop()
	}
}

// setCancel installs a cancel hook that signals gracefully first and forcibly
// after grace. signal receives the child PID.
func setCancel(cmd *exec.Cmd, grace time.Duration, kill *killTimer, signal func(pid int, graceful bool) error) {
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		pid := cmd.Process.Pid
		if err := signal(pid, true); err != nil {
			return cmd.Process.Kill()
		}
		kill.schedule(grace, func() { _ = signal(pid, false) })
		return nil
	}
	cmd.WaitDelay = grace
}
