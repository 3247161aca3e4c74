package sse

import "strings"

// ParseFrame parses one complete frame's text into an Event.
//
// Lines beginning with ':' are comments and are skipped. "event:" sets the
// event type, "data:" appends to the data payload (multiple data lines are
// joined with "\n"), "id:" sets the event ID. A single leading space after
// the colon is stripped per the SSE spec. Empty and unrecognized lines are
// ignored.
//
// The second return value reports whether the frame carried at least one
// "data:" line. Frames without one yield their event type but are not
// forwarded past classification by callers.
//
// Per the SSE spec a line with no colon is a field name with an empty value.
func ParseFrame(frame string) (*Event, bool) {
	ev := &Event{}
	hasField := false
	hasData := false

	for _, raw := range strings.Split(frame, "\n") {
		line := strings.TrimSuffix(raw, "\r")

		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		var field, value string
		if before, after, ok := strings.Cut(line, ":"); ok {
			field = before
			// Strip a single leading space after the colon, per spec.
			value = strings.TrimPrefix(after, " ")
		} else {
			field = line
		}

		switch field {
		case "data":
			if hasData {
				ev.Data += "\n"
			}
			ev.Data += value
			hasData = true
			hasField = true
		case "event":
			ev.Type = value
			hasField = true
		case "id":
			ev.ID = value
			hasField = true
		default:
			// "retry" and other unknown fields are ignored per the SSE spec.
		}
	}

	if !hasField {
		return nil, false
	}

	return ev, hasData
}
