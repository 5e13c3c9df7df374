//go:build !windows

package process

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// configureKill starts the process in its own group and makes cancellation
// kill the whole group.
func configureKill(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		switch err {
		case nil:
			return nil
		case unix.ESRCH:
			return os.ErrProcessDone
		default:
			return cmd.Process.Kill()
		}
	}
}
