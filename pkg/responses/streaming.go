package responses

// StreamingResponse is the externally visible unit emitted by the stream
// decoder, one per meaningful SSE frame. A nil StreamingResponse from the
// decoder means "nothing to emit for this frame, keep iterating".
type StreamingResponse struct {
	// ID is the response id for lifecycle events, or the item_id the
	// event refers to for delta/done/tool events.
	ID string `json:"id,omitempty"`

	// Model that is generating the response (lifecycle events only)
	Model string `json:"model,omitempty"`

	// Created is the response creation time in epoch seconds
	// (lifecycle events only).
	Created int64 `json:"created,omitempty"`

	// EventType is the raw event type string as received on the wire
	// (e.g. "response.output_text.delta").
	EventType string `json:"event_type,omitempty"`

	// Output holds zero or one decoded fragment. The streaming
	// representation is single-fragment-per-event; accumulating fragments
	// is the consumer's responsibility.
	Output []OutputItem `json:"output,omitempty"`

	// Item is the structural item snapshot carried by the frame, if any.
	Item *ItemSnapshot `json:"item,omitempty"`

	// Usage is populated on response.completed.
	Usage *Usage `json:"usage,omitempty"`
}

// GetText returns the text of the single decoded fragment, or the empty
// string when the frame carried none.
func (s *StreamingResponse) GetText() string {
	for _, item := range s.Output {
		for _, part := range item.Content {
			return part.Text
		}
	}
	return ""
}
