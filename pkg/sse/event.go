// Package sse provides incremental SSE (Server-Sent Events) framing for the
// respond client. It turns an arbitrarily-chunked byte stream into complete
// blank-line-delimited frames (Splitter), parses one frame into its event
// and data fields (ParseFrame), and recognizes the "[DONE]" end-of-stream
// sentinel before any JSON decoding is attempted (IsCompletion).
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "strings"

// CompletionSentinel is the literal data payload that marks end-of-stream.
// It is not valid JSON and must be detected before structured parsing.
const CompletionSentinel = "[DONE]"

// Event represents a single parsed SSE event, delimited by a blank line
// in the upstream byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n" (per the SSE spec, multiple data fields are joined
	// with a single newline).
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string
}

// IsCompletion reports whether a data payload is the end-of-stream sentinel.
func IsCompletion(data string) bool {
	return strings.TrimSpace(data) == CompletionSentinel
}

// IsCompletionFrame reports whether a raw frame carries the completion
// sentinel as its whole data payload. It works on the frame text directly,
// independent of JSON parsing, so it is safe to call on any frame.
func IsCompletionFrame(frame string) bool {
	ev, hasData := ParseFrame(frame)
	if ev == nil || !hasData {
		return false
	}
	return IsCompletion(ev.Data)
}
