//go:build windows

package input

import (
	"errors"
	"os"
)

// Windows has no polite termination signal for console children.
func interrupt(p *os.Process) error { return terminate(p) }

func terminate(p *os.Process) error {
	if err := p.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
