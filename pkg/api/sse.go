package api

import (
	"bufio"
	"io"
	"strings"
)

// sseEvent is one decoded Server-Sent-Events frame: an event name plus
// the joined data lines.
type sseEvent struct {
	name string
	data string
}

// sseReader incrementally decodes the `event:`/`data:` framing of an
// SSE byte stream. It is the client-side counterpart of the gateway's
// SSE writer.
type sseReader struct {
	scanner *bufio.Scanner
}

func newSSEReader(r io.Reader) *sseReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseReader{scanner: scanner}
}

// Next returns the next complete event. It returns io.EOF when the
// stream ends; a partial frame at EOF is discarded per the SSE
// dispatch rules.
func (r *sseReader) Next() (sseEvent, error) {
	var ev sseEvent
	var data []string
	pending := false

	for r.scanner.Scan() {
		line := r.scanner.Text()
		line = strings.TrimSuffix(line, "\r")

		if line == "" {
			if pending {
				ev.data = strings.Join(data, "\n")
				return ev, nil
			}
			continue
		}

		if strings.HasPrefix(line, ":") {
			// Comment/keepalive line.
			continue
		}

		field, value, found := strings.Cut(line, ":")
		if !found {
			field, value = line, ""
		}
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			ev.name = value
			pending = true
		case "data":
			data = append(data, value)
			pending = true
		}
	}

	if err := r.scanner.Err(); err != nil {
		return sseEvent{}, err
	}
	return sseEvent{}, io.EOF
}
