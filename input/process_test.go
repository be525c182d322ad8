//go:build !windows

package input_test

import (
	"bufio"
	"errors"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padrelay/input"
)

func TestProcessExitLine(t *testing.T) {
	p, err := input.StartProcess("sh", "-c", `read line; echo "got:$line"`)
	require.NoError(t, err)

	require.NoError(t, p.Exit())
	require.NoError(t, p.Exit())

	line, err := bufio.NewReader(p.Stdout()).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "got:exit\n", line)
	assert.NoError(t, p.Wait())
}

func TestStartProcessMissingBinary(t *testing.T) {
	_, err := input.StartProcess("./definitely-not-an-input-server")
	assert.Error(t, err)
}

func TestProcessKillSendsTermFirst(t *testing.T) {
	p, err := input.StartProcess("sh", "-c", `trap "exit 3" TERM; echo ready; while :; do sleep 0.05; done`)
	require.NoError(t, err)
	_, err = bufio.NewReader(p.Stdout()).ReadString('\n')
	require.NoError(t, err)

	require.NoError(t, p.Kill(5*time.Second))
	var exitErr *exec.ExitError
	require.True(t, errors.As(p.Wait(), &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode())
}

func TestProcessKillEscalates(t *testing.T) {
	p, err := input.StartProcess("sh", "-c", `trap "" TERM; echo ready; while :; do sleep 0.05; done`)
	require.NoError(t, err)
	_, err = bufio.NewReader(p.Stdout()).ReadString('\n')
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, p.Kill(100*time.Millisecond))
	var exitErr *exec.ExitError
	require.True(t, errors.As(p.Wait(), &exitErr))
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	require.True(t, ok)
	assert.Equal(t, syscall.SIGKILL, ws.Signal())
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestProcessKillAfterExit(t *testing.T) {
	p, err := input.StartProcess("sh", "-c", "exit 0")
	require.NoError(t, err)
	require.NoError(t, p.Wait())
	assert.NoError(t, p.Kill(10*time.Millisecond))
}
