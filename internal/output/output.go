// Package output is the user-visible log channel that planner output and
// session failures are written to.
package output

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
)

// ansiPattern matches CSI and OSC escape sequences.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`)

// StripANSI removes terminal colour and cursor escape sequences from s.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// Channel serialises writes of whole lines to an underlying writer.
type Channel struct {
	mu sync.Mutex
	w  io.Writer
}

// NewChannel returns a Channel writing to w.
func NewChannel(w io.Writer) *Channel {
	if w == nil {
		w = io.Discard
	}
	return &Channel{w: w}
}

// AppendLine writes text followed by a newline, removing escape sequences
// first when stripANSI is set. Multi-line text is written as one block.
func (c *Channel) AppendLine(text string, stripANSI bool) {
	if c == nil {
		return
	}
	if stripANSI {
		text = StripANSI(text)
	}
	text = strings.TrimRight(text, "\n")

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, text)
}

// Appendf formats according to a format specifier and appends the result
// verbatim.
func (c *Channel) Appendf(format string, args ...any) {
	c.AppendLine(fmt.Sprintf(format, args...), false)
}

// Writer returns an io.Writer that appends every complete line it receives,
// stripped of escape sequences. Close flushes a trailing partial line.
func (c *Channel) Writer() io.WriteCloser {
	return &lineWriter{c: c}
}

type lineWriter struct {
	mu  sync.Mutex
	c   *Channel
	buf []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.c.AppendLine(string(w.buf[:i]), true)
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.c.AppendLine(string(w.buf), true)
		w.buf = nil
	}
	return nil
}
