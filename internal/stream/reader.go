package stream

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
)

// Reader consumes an SSE event stream produced by Writer. It yields events
// lazily in wire order and is not restartable: once Recv returns io.EOF the
// stream is exhausted.
//
// A line that fails to parse is skipped, not fatal. Only transport-level
// read errors terminate the stream with an error.
type Reader struct {
	rc      io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

const dataPrefix = "data: "

// maxLineSize bounds a single SSE line. Upstream deltas are tiny; 1MB leaves
// generous headroom for batched frames.
const maxLineSize = 1 << 20

// NewReader wraps rc, which must produce `data: <json>` lines terminated by
// the sentinel. The caller owns rc and should call Close when finished.
func NewReader(rc io.ReadCloser) *Reader {
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &Reader{rc: rc, scanner: scanner}
}

// Recv returns the next event. It returns io.EOF once the sentinel arrives
// or the underlying stream ends; an upstream close without a sentinel counts
// as normal completion.
func (r *Reader) Recv() (Event, error) {
	if r.done {
		return Event{}, io.EOF
	}
	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		data := line[len(dataPrefix):]
		if data == Sentinel {
			r.done = true
			return Event{}, io.EOF
		}

		var ev Event
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			slog.Debug("skipping malformed stream line", "error", err, "line", data)
			continue
		}
		return ev, nil
	}

	r.done = true
	if err := r.scanner.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, io.EOF
}

// Close releases the underlying stream. Recv must not be called after Close.
func (r *Reader) Close() error {
	r.done = true
	return r.rc.Close()
}
