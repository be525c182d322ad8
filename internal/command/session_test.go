package command_test

import (
	"bufio"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padrelay/internal/command"
)

func TestSessionPoll(t *testing.T) {
	h, _ := newHandler(t)
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	s := command.NewSession(h, inR, outW, nil)

	require.NoError(t, s.Poll(), "poll with no input returns immediately")

	go func() {
		_, _ = io.WriteString(inW, "\"GetAnarchyMode\"\n\nnope\n")
	}()

	results := make(chan string, 2)
	go func() {
		r := bufio.NewReader(outR)
		for range 2 {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			results <- line
		}
	}()

	var got []string
	deadline := time.Now().Add(2 * time.Second)
	for len(got) < 2 && time.Now().Before(deadline) {
		require.NoError(t, s.Poll())
		select {
		case line := <-results:
			got = append(got, line)
		case <-time.After(time.Millisecond):
		}
	}
	assert.Equal(t, []string{
		"{\"Ok\":\"false\"}\n",
		"{\"Err\":\"The given command is unsupported.\"}\n",
	}, got)
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("stdout closed") }

func TestSessionWriteFailure(t *testing.T) {
	h, _ := newHandler(t)
	inR, inW := io.Pipe()
	s := command.NewSession(h, inR, brokenWriter{}, nil)
	go func() { _, _ = io.WriteString(inW, "\"Connect\"\n") }()

	assert.Eventually(t, func() bool { return s.Poll() != nil }, 2*time.Second, time.Millisecond)
}

func TestSessionCloseStopsReader(t *testing.T) {
	h, _ := newHandler(t)
	inR, inW := io.Pipe()
	defer inR.Close()
	s := command.NewSession(h, inR, io.Discard, nil)

	// Fill the queue and leave one more line waiting on it.
	for range 65 {
		_, err := io.WriteString(inW, "\"GetAnarchyMode\"\n")
		require.NoError(t, err)
	}
	s.Close()
	require.NoError(t, s.Poll())

	written := make(chan struct{})
	go func() {
		_, _ = io.WriteString(inW, "\"GetAnarchyMode\"\n")
		close(written)
	}()
	assert.Never(t, func() bool {
		select {
		case <-written:
			return true
		default:
			return false
		}
	}, 100*time.Millisecond, 5*time.Millisecond)
}
