//go:build !windows

package input

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func interrupt(p *os.Process) error { return sendSignal(p.Pid, unix.SIGTERM) }

func terminate(p *os.Process) error { return sendSignal(p.Pid, unix.SIGKILL) }

// sendSignal treats a process that is already gone as success.
func sendSignal(pid int, sig unix.Signal) error {
	if err := unix.Kill(pid, sig); err != nil && !errors.Is(err, unix.ESRCH) {
		return err
	}
	return nil
}
