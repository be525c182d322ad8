package log

import (
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger dumps transmitted frames. A RawLogger built on a nil writer
// discards everything.
type RawLogger interface {
	Log(dest string, data []byte)
}

type rawLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewRaw returns a RawLogger writing one hex line per frame to w.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

func (l *rawLogger) Log(dest string, data []byte) {
	if l.w == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintf(l.w, "%s -> %s [%d] %s\n", time.Now().Format("15:04:05.000000"), dest, len(data), hex.EncodeToString(data))
}
