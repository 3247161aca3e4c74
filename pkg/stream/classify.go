// Package stream implements the incremental decoder that turns Responses API
// SSE frames into typed StreamingResponse values. The Decoder composes the
// framing layer in pkg/sse with a pure event classifier, a category-driven
// assembler, and a per-stream Tracker for multi-event code interpreter
// containers.
package stream

import "strings"

// Category is the closed taxonomy of stream event kinds. The raw event-type
// vocabulary is open and externally owned; Category is what downstream
// behavior dispatches on.
type Category int

const (
	// CategoryUnknown is the default for any unrecognized event type.
	// Unknown events are skipped, never errors.
	CategoryUnknown Category = iota

	// CategoryLifecycle covers response.created, response.in_progress and
	// response.completed.
	CategoryLifecycle

	// CategoryDelta covers incremental text/argument fragments (".delta").
	CategoryDelta

	// CategoryDone covers end-of-field events (".done").
	CategoryDone

	// CategoryToolCall covers tool progress events (searching, in_progress,
	// completed, ...) on a tool-call namespace.
	CategoryToolCall

	// CategoryContentPart covers response.content_part.* events.
	CategoryContentPart

	// CategoryError covers the error event and response-level failures.
	CategoryError

	// CategorySpecialized covers recognized structural events that fit no
	// other category (output_item added/done, queued, annotations,
	// reasoning summary parts).
	CategorySpecialized
)

func (c Category) String() string {
	switch c {
	case CategoryLifecycle:
		return "lifecycle"
	case CategoryDelta:
		return "delta"
	case CategoryDone:
		return "done"
	case CategoryToolCall:
		return "tool_call"
	case CategoryContentPart:
		return "content_part"
	case CategoryError:
		return "error"
	case CategorySpecialized:
		return "specialized"
	default:
		return "unknown"
	}
}

// The tables below are the single home of the literal event-type vocabulary.
// The upstream API grows this set over time; adding a literal here is the
// whole change.

// lifecycleEvents are matched exactly, before any suffix rule.
var lifecycleEvents = map[string]struct{}{
	"response.created":     {},
	"response.in_progress": {},
	"response.completed":   {},
}

// structuralEvents are recognized specialized literals. They are matched
// before the suffix rules so that e.g. response.output_item.done is
// structural rather than a field-level done event.
var structuralEvents = map[string]struct{}{
	"response.queued":                       {},
	"response.output_item.added":            {},
	"response.output_item.done":             {},
	"response.output_text.annotation.added": {},
	"response.reasoning_summary_part.added": {},
	"response.reasoning_summary_part.done":  {},
}

// errorEvents are response-level failures.
var errorEvents = map[string]struct{}{
	"error":               {},
	"response.error":      {},
	"response.failed":     {},
	"response.incomplete": {},
}

// toolProgressSuffixes is the tool progress vocabulary, keyed by the final
// dot-separated segment of the event type.
var toolProgressSuffixes = map[string]struct{}{
	"searching":     {},
	"in_progress":   {},
	"completed":     {},
	"failed":        {},
	"incomplete":    {},
	"interpreting":  {},
	"generating":    {},
	"partial_image": {},
}

// Classify maps a raw event-type string onto a Category. It prefers the
// explicit SSE event type and falls back to the "type" field from the JSON
// payload (both are present in practice and expected to agree).
//
// Rules are checked in order, first match wins. Anything unrecognized is
// CategoryUnknown, which callers must treat as "skip", never as an error.
func Classify(eventType, payloadType string) Category {
	raw := eventType
	if raw == "" {
		raw = payloadType
	}
	if raw == "" {
		return CategoryUnknown
	}

	if _, ok := lifecycleEvents[raw]; ok {
		return CategoryLifecycle
	}
	if _, ok := structuralEvents[raw]; ok {
		return CategorySpecialized
	}
	if strings.HasPrefix(raw, "response.content_part.") {
		return CategoryContentPart
	}

	// Suffix rules. The underscore variants cover the MCP argument events
	// (mcp_call.arguments_delta / arguments_done).
	if strings.HasSuffix(raw, ".delta") || strings.HasSuffix(raw, "_delta") {
		return CategoryDelta
	}
	if strings.HasSuffix(raw, ".done") || strings.HasSuffix(raw, "_done") {
		return CategoryDone
	}

	if isToolCallEvent(raw) {
		return CategoryToolCall
	}

	if _, ok := errorEvents[raw]; ok {
		return CategoryError
	}

	return CategoryUnknown
}

// isToolCallEvent reports whether raw is a tool progress event: a recognized
// progress suffix on a tool-call namespace (a segment containing "_call" or
// the mcp_list_tools namespace).
func isToolCallEvent(raw string) bool {
	dot := strings.LastIndex(raw, ".")
	if dot < 0 {
		return false
	}

	if _, ok := toolProgressSuffixes[raw[dot+1:]]; !ok {
		return false
	}

	namespace := raw[:dot]
	return strings.Contains(namespace, "_call") ||
		strings.HasSuffix(namespace, "mcp_list_tools")
}

// statusText names the status transition a tool or structural event carries,
// for the placeholder content part emitted to downstream consumers.
// Pure structural events yield the empty string.
func statusText(raw string) string {
	switch raw {
	case "response.queued":
		return "queued"
	case "response.output_item.added", "response.output_item.done":
		return ""
	}

	dot := strings.LastIndex(raw, ".")
	if dot < 0 {
		return ""
	}

	if _, ok := toolProgressSuffixes[raw[dot+1:]]; ok {
		return strings.ReplaceAll(raw[dot+1:], "_", " ")
	}

	return ""
}
