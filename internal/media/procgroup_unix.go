//go:build unix

package media

import (
	"os/exec"
	"syscall"
	"time"
)

// setProcessGroup starts cmd in a new process group. Cancellation kills the
// whole group, children included.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second
}
