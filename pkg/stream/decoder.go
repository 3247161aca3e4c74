package stream

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/papercomputeco/respond/pkg/responses"
	"github.com/papercomputeco/respond/pkg/sse"
)

// FrameError reports a single frame whose data payload could not be decoded.
// It is recoverable at frame granularity: the decoder's buffer state is
// untouched and subsequent frames keep flowing, so callers should log the
// error and continue feeding bytes.
type FrameError struct {
	EventType string
	Err       error
}

func (e *FrameError) Error() string {
	if e.EventType != "" {
		return fmt.Sprintf("decoding frame %q: %v", e.EventType, e.Err)
	}
	return fmt.Sprintf("decoding frame: %v", e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// eventPayload is the superset of JSON fields the decoder consumes from any
// stream event. All fields are optional on the wire.
type eventPayload struct {
	Type           string                 `json:"type"`
	SequenceNumber int                    `json:"sequence_number"`
	ItemID         string                 `json:"item_id"`
	OutputIndex    *int                   `json:"output_index"`
	Delta          string                 `json:"delta"`
	Arguments      string                 `json:"arguments"`
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Item           *itemPayload           `json:"item"`
	Part           *responses.ContentPart `json:"part"`
	Response       *responses.Response    `json:"response"`
	Error          *responses.APIError    `json:"error"`
}

// itemPayload is the wire shape of the "item" object.
type itemPayload struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Status    string   `json:"status"`
	Name      string   `json:"name"`
	CallID    string   `json:"call_id"`
	Arguments string   `json:"arguments"`
	Summary   []string `json:"summary"`
}

func (p *itemPayload) snapshot() *responses.ItemSnapshot {
	return &responses.ItemSnapshot{
		ID:        p.ID,
		Type:      responses.ParseItemType(p.Type),
		RawType:   p.Type,
		Status:    p.Status,
		Name:      p.Name,
		CallID:    p.CallID,
		Arguments: p.Arguments,
		Summary:   p.Summary,
	}
}

// Decoder turns a live, arbitrarily-chunked byte stream of SSE frames into
// an ordered sequence of StreamingResponse values. It owns one Splitter and
// one Tracker, so one Decoder serves exactly one stream; concurrent streams
// must each construct their own.
//
// Processing is single-threaded and pull-based: the caller feeds chunks as
// the transport delivers them and the Decoder never blocks.
type Decoder struct {
	splitter *sse.Splitter
	tracker  *Tracker

	// items keys every seen item snapshot by id so later events for an id
	// mutate the snapshot created when the id was first seen.
	items map[string]*responses.ItemSnapshot

	done bool
}

// NewDecoder returns a Decoder with a fresh Splitter and Tracker.
func NewDecoder() *Decoder {
	return NewDecoderWithTracker(NewTracker())
}

// NewDecoderWithTracker returns a Decoder using the caller-owned tracker.
// The tracker must not be shared across streams.
func NewDecoderWithTracker(tr *Tracker) *Decoder {
	return &Decoder{
		splitter: sse.NewSplitter(),
		tracker:  tr,
		items:    make(map[string]*responses.ItemSnapshot),
	}
}

// Tracker exposes the decoder's container tracker for inspection once the
// stream ends (e.g. to read accumulated code interpreter source).
func (d *Decoder) Tracker() *Tracker {
	return d.tracker
}

// Done reports whether the [DONE] completion sentinel has been seen.
func (d *Decoder) Done() bool {
	return d.done
}

// Feed appends a chunk of raw bytes and returns the StreamingResponse values
// for every frame completed by it, in the exact order the frames' delimiters
// appear in the byte stream. Frames that carry nothing emittable (unknown
// events, comment-only frames, the completion sentinel) produce no entry.
//
// Malformed frames are reported in the joined error without interrupting
// decoding of the remaining frames, and never corrupt the splitter's buffer:
// one bad frame in a long-lived stream must not cost the data behind it.
func (d *Decoder) Feed(chunk []byte) ([]*responses.StreamingResponse, error) {
	var out []*responses.StreamingResponse
	var errs []error

	for _, frame := range d.splitter.Feed(chunk) {
		sr, err := d.DecodeFrame(frame)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if sr != nil {
			out = append(out, sr)
		}
	}

	return out, errors.Join(errs...)
}

// DecodeFrame decodes one complete frame's text. It returns (nil, nil) for
// frames with nothing to emit, and a *FrameError for malformed payloads.
//
// The completion sentinel is checked before any JSON parsing: "[DONE]" is
// not valid JSON and must never surface as a parse error.
func (d *Decoder) DecodeFrame(frame string) (*responses.StreamingResponse, error) {
	ev, hasData := sse.ParseFrame(frame)
	if ev == nil || !hasData {
		// Comment-only frames and frames without a data field are
		// discarded after classification.
		return nil, nil
	}

	return d.decodeData(ev.Type, ev.Data)
}

// DecodeEvent decodes one already-parsed SSE event, e.g. read through an
// sse.TeeReader. Events without a data payload produce nothing.
func (d *Decoder) DecodeEvent(ev *sse.Event) (*responses.StreamingResponse, error) {
	if ev == nil || ev.Data == "" {
		return nil, nil
	}

	return d.decodeData(ev.Type, ev.Data)
}

func (d *Decoder) decodeData(evType, data string) (*responses.StreamingResponse, error) {
	if sse.IsCompletion(data) {
		d.done = true
		return nil, nil
	}

	var payload eventPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, &FrameError{EventType: evType, Err: err}
	}

	eventType := evType
	if eventType == "" {
		eventType = payload.Type
	}

	category := Classify(evType, payload.Type)
	if category == CategoryUnknown {
		return nil, nil
	}

	return d.assemble(category, eventType, &payload), nil
}

// assemble builds the StreamingResponse for one classified frame and applies
// its side effects to the container tracker.
func (d *Decoder) assemble(category Category, eventType string, payload *eventPayload) *responses.StreamingResponse {
	item := d.trackItem(payload)

	sr := &responses.StreamingResponse{
		EventType: eventType,
		ID:        payload.ItemID,
		Item:      item,
	}

	switch category {
	case CategoryLifecycle:
		resp := payload.Response
		if resp == nil {
			return nil
		}
		sr.ID = resp.ID
		sr.Model = resp.Model
		sr.Created = resp.CreatedAt
		if eventType == "response.completed" {
			sr.Output = resp.Output
			sr.Usage = resp.Usage
		}

	case CategoryDelta:
		if eventType == "response.code_interpreter_call_code.delta" {
			d.tracker.AppendDelta(payload.ItemID, payload.Delta)
		}
		sr.Output = fragment("text", payload.Delta, payload.OutputIndex)

	case CategoryDone:
		if eventType == "response.code_interpreter_call_code.done" {
			final := payload.Code
			if final == "" {
				final = payload.Arguments
			}
			d.tracker.MarkCodeComplete(payload.ItemID, final)
		}
		// A done event without a final value resolves to the empty
		// string; the [DONE] sentinel never appears as content.
		sr.Output = fragment("text", payload.Arguments, payload.OutputIndex)

	case CategoryToolCall:
		if sr.ID == "" && payload.Response != nil {
			sr.ID = payload.Response.ID
		}
		sr.Output = fragment("status", statusText(eventType), payload.OutputIndex)

	case CategoryContentPart:
		text := ""
		if payload.Part != nil {
			text = payload.Part.Text
		}
		sr.Output = fragment("text", text, payload.OutputIndex)

	case CategorySpecialized:
		if sr.ID == "" && payload.Response != nil {
			sr.ID = payload.Response.ID
		}
		if eventType == "response.output_item.done" {
			d.tracker.MarkCompleted(payload.ItemID)
		}
		if text := statusText(eventType); text != "" {
			sr.Output = fragment("status", text, payload.OutputIndex)
		}

	case CategoryError:
		if sr.ID == "" && payload.Response != nil {
			sr.ID = payload.Response.ID
		}
		if msg := errorMessage(payload); msg != "" {
			sr.Output = fragment("text", msg, payload.OutputIndex)
		}
	}

	return sr
}

// errorMessage extracts the human-readable message from an error event. The
// upstream API spells it three ways: a nested error object, top-level
// message fields on the error event itself, and response.error on failed
// lifecycle responses.
func errorMessage(payload *eventPayload) string {
	if payload.Error != nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	if payload.Message != "" {
		return payload.Message
	}
	if payload.Response != nil && payload.Response.Error != nil {
		return payload.Response.Error.Message
	}
	return ""
}

// trackItem folds the payload's item object, if present, into the snapshot
// table. The first event for an id creates the snapshot; later events for
// the same id mutate it in place, with empty incoming fields leaving the
// recorded values untouched. Code interpreter items are forwarded to the
// container tracker.
func (d *Decoder) trackItem(payload *eventPayload) *responses.ItemSnapshot {
	if payload.Item == nil {
		return nil
	}

	incoming := payload.Item.snapshot()

	key := payload.ItemID
	if key == "" {
		key = incoming.ID
	}
	if key == "" {
		// No id to track under; emit the snapshot unkeyed.
		return incoming
	}

	snap, ok := d.items[key]
	if !ok {
		snap = incoming
		d.items[key] = snap
	} else {
		mergeSnapshot(snap, incoming)
	}

	if snap.Type == responses.ItemTypeCodeInterpreterCall {
		d.tracker.Track(key, snap)
	}

	return snap
}

// mergeSnapshot overlays the non-empty fields of incoming onto snap.
func mergeSnapshot(snap, incoming *responses.ItemSnapshot) {
	if incoming.ID != "" {
		snap.ID = incoming.ID
	}
	if incoming.RawType != "" {
		snap.Type = incoming.Type
		snap.RawType = incoming.RawType
	}
	if incoming.Status != "" {
		snap.Status = incoming.Status
	}
	if incoming.Name != "" {
		snap.Name = incoming.Name
	}
	if incoming.CallID != "" {
		snap.CallID = incoming.CallID
	}
	if incoming.Arguments != "" {
		snap.Arguments = incoming.Arguments
	}
	if len(incoming.Summary) > 0 {
		snap.Summary = incoming.Summary
	}
}

// fragment builds the single-fragment output of one streaming event.
func fragment(partType, text string, index *int) []responses.OutputItem {
	return []responses.OutputItem{
		{
			Type: "message",
			Content: []responses.ContentPart{
				{Type: partType, Text: text, Index: index},
			},
		},
	}
}
