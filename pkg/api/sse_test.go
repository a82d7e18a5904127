package api

import (
	"io"
	"strings"
	"testing"
)

func TestSSEReaderNext(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []sseEvent
	}{
		{
			name:  "SingleEvent",
			input: "event: token\ndata: {\"delta\":\"hi\"}\n\n",
			want:  []sseEvent{{name: "token", data: `{"delta":"hi"}`}},
		},
		{
			name:  "MultipleEvents",
			input: "event: token\ndata: a\n\nevent: done\ndata: {}\n\n",
			want:  []sseEvent{{name: "token", data: "a"}, {name: "done", data: "{}"}},
		},
		{
			name:  "MultiLineData",
			input: "event: token\ndata: first\ndata: second\n\n",
			want:  []sseEvent{{name: "token", data: "first\nsecond"}},
		},
		{
			name:  "CRLFTerminated",
			input: "event: meta\r\ndata: x\r\n\r\n",
			want:  []sseEvent{{name: "meta", data: "x"}},
		},
		{
			name:  "CommentsSkipped",
			input: ": keepalive\n\nevent: done\ndata: {}\n\n",
			want:  []sseEvent{{name: "done", data: "{}"}},
		},
		{
			name:  "NoSpaceAfterColon",
			input: "event:trace\ndata:{}\n\n",
			want:  []sseEvent{{name: "trace", data: "{}"}},
		},
		{
			name:  "DataWithoutEventName",
			input: "data: bare\n\n",
			want:  []sseEvent{{name: "", data: "bare"}},
		},
		{
			name:  "PartialFrameAtEOFDiscarded",
			input: "event: token\ndata: incomple",
			want:  nil,
		},
		{
			name:  "LeadingBlankLines",
			input: "\n\nevent: done\ndata: {}\n\n",
			want:  []sseEvent{{name: "done", data: "{}"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newSSEReader(strings.NewReader(tc.input))

			var got []sseEvent
			for {
				ev, err := r.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("Next returned error: %v", err)
				}
				got = append(got, ev)
			}

			if len(got) != len(tc.want) {
				t.Fatalf("decoded %d events, want %d: %+v", len(got), len(tc.want), got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("event %d = %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}
