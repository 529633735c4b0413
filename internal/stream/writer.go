package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Writer frames Events as SSE data lines onto an http.ResponseWriter,
// flushing after every frame so deltas reach the client as they arrive.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

// NewWriter prepares w for event streaming. It returns an error if the
// underlying ResponseWriter does not support flushing.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}
	return &Writer{w: w, flusher: flusher}, nil
}

// Send writes one event frame. The first Send sets the SSE response headers;
// after that the status line is committed and errors can no longer be
// reported to the client as HTTP errors.
func (sw *Writer) Send(ev Event) error {
	if !sw.started {
		sw.begin()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	if _, err := fmt.Fprintf(sw.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	sw.flusher.Flush()
	return nil
}

// Done terminates the stream with the sentinel line. Safe to call even when
// no event was ever sent; the client then sees an empty but well-formed
// stream.
func (sw *Writer) Done() {
	if !sw.started {
		sw.begin()
	}
	fmt.Fprintf(sw.w, "data: %s\n\n", Sentinel)
	sw.flusher.Flush()
}

func (sw *Writer) begin() {
	h := sw.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	sw.started = true
}
