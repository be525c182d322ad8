package input

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"
)

// exitLine asks the input server to shut itself down.
const exitLine = "exit\n"

// Process is a running input server whose stdout carries events and whose
// stdin accepts control lines.
type Process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser

	mu     sync.Mutex
	exited bool

	waitOnce sync.Once
	done     chan struct{}
	waitErr  error
}

// StartProcess spawns the input server with both standard streams piped.
func StartProcess(path string, args ...string) (*Process, error) {
	cmd := exec.Command(path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe input server stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe input server stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start input server %q: %w", path, err)
	}
	return &Process{cmd: cmd, stdin: stdin, stdout: stdout, done: make(chan struct{})}, nil
}

// Stdout is the event stream.
func (p *Process) Stdout() io.Reader { return p.stdout }

// Pid returns the OS process id.
func (p *Process) Pid() int { return p.cmd.Process.Pid }

// Exit sends the exit line and falls back to killing the process when the
// line cannot be written. Calling Exit more than once is a no-op.
func (p *Process) Exit() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exited {
		return nil
	}
	p.exited = true

	if _, err := io.WriteString(p.stdin, exitLine); err != nil {
		if kerr := terminate(p.cmd.Process); kerr != nil {
			return errors.New("failed to write to input server and kill it")
		}
		return fmt.Errorf("failed to write to input server: %w", err)
	}
	return nil
}

// Wait blocks until the process has exited and releases its resources. It
// may be called from several goroutines.
func (p *Process) Wait() error {
	p.startWait()
	<-p.done
	return p.waitErr
}

// startWait reaps the process in the background. It must not run before the
// caller is done reading Stdout, since reaping closes the pipe.
func (p *Process) startWait() {
	p.waitOnce.Do(func() {
		go func() {
			p.waitErr = p.cmd.Wait()
			close(p.done)
		}()
	})
}

// Kill asks the process to terminate and kills it if it is still running
// after grace.
func (p *Process) Kill(grace time.Duration) error {
	p.startWait()
	if err := interrupt(p.cmd.Process); err != nil {
		return terminate(p.cmd.Process)
	}
	select {
	case <-p.done:
		return nil
	case <-time.After(grace):
	}
	return terminate(p.cmd.Process)
}
