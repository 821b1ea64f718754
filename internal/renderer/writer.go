package renderer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Format selects how a Writer prints messages.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("invalid output format %q (want text or json)", s)
}

// Writer is a Sink printing messages to an io.Writer, either as JSON lines
// of the form {"event":..., "data":...} or as a human readable summary.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	format Format
}

// NewWriter creates a Writer sink.
func NewWriter(w io.Writer, format Format) *Writer {
	return &Writer{w: w, format: format}
}

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Init implements Sink.
func (w *Writer) Init(_ context.Context, msg InitMessage) error {
	if w.format == FormatJSON {
		return w.writeJSON(EventInit, msg)
	}
	return w.writeText(fmt.Sprintf("stack %s: %s\n", msg.Stack, msg.Status))
}

// Update implements Sink.
func (w *Writer) Update(_ context.Context, msg UpdateMessage) error {
	if w.format == FormatJSON {
		return w.writeJSON(EventUpdate, msg)
	}
	return w.writeText(FormatUpdate(msg))
}

// FormatUpdate renders an update as one header line followed by one line per
// node, grouped by level.
func FormatUpdate(msg UpdateMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "stack %s: %s (%d resources, %d levels)\n", msg.Stack, msg.Status, len(msg.Nodes), levelCount(msg))
	for _, n := range msg.Nodes {
		fmt.Fprintf(&b, "  L%d  %-8s  %s", n.Level, n.Status, n.Label)
		if len(n.DependsOn) > 0 {
			fmt.Fprintf(&b, "  <- %s", strings.Join(n.DependsOn, ", "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func levelCount(msg UpdateMessage) int {
	if len(msg.Nodes) == 0 {
		return 0
	}
	return msg.MaxLevel + 1
}

func (w *Writer) writeJSON(event string, data any) error {
	line, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("encoding %s message: %w", event, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.w.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing %s message: %w", event, err)
	}
	return nil
}

func (w *Writer) writeText(s string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := io.WriteString(w.w, s); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	return nil
}
