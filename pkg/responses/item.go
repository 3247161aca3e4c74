package responses

// ItemType is the closed set of structural item kinds this library
// understands. Raw strings outside the set map to ItemTypeUnknown rather
// than failing: the upstream vocabulary grows over time.
type ItemType string

const (
	ItemTypeMessage             ItemType = "message"
	ItemTypeFunctionCall        ItemType = "function_call"
	ItemTypeCodeInterpreterCall ItemType = "code_interpreter_call"
	ItemTypeFileSearchCall      ItemType = "file_search_call"
	ItemTypeMCPCall             ItemType = "mcp_call"
	ItemTypeReasoning           ItemType = "reasoning"
	ItemTypeUnknown             ItemType = "unknown"
)

// ParseItemType maps a raw item type string onto ItemType.
func ParseItemType(raw string) ItemType {
	switch ItemType(raw) {
	case ItemTypeMessage, ItemTypeFunctionCall, ItemTypeCodeInterpreterCall,
		ItemTypeFileSearchCall, ItemTypeMCPCall, ItemTypeReasoning:
		return ItemType(raw)
	default:
		return ItemTypeUnknown
	}
}

// ItemSnapshot is metadata about a structural item referenced by
// output_item.added / output_item.done events. A snapshot is created when an
// item id is first seen and mutated in place as later events for the same id
// arrive; this layer never deletes snapshots, the stream's consumer owns
// cleanup when the stream ends.
type ItemSnapshot struct {
	ID        string   `json:"id,omitempty"`
	Type      ItemType `json:"type,omitempty"`
	RawType   string   `json:"-"`
	Status    string   `json:"status,omitempty"`
	Name      string   `json:"name,omitempty"`
	CallID    string   `json:"call_id,omitempty"`
	Arguments string   `json:"arguments,omitempty"`
	Summary   []string `json:"summary,omitempty"`
}
