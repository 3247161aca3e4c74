package stream

import "github.com/papercomputeco/respond/pkg/responses"

// ContainerStatus is the lifecycle state of a tracked code interpreter
// container. Transitions are monotonic: Created -> Interpreting -> Completed,
// no regressions.
type ContainerStatus int

const (
	StatusCreated ContainerStatus = iota
	StatusInterpreting
	StatusCompleted
)

func (s ContainerStatus) String() string {
	switch s {
	case StatusInterpreting:
		return "interpreting"
	case StatusCompleted:
		return "completed"
	default:
		return "created"
	}
}

// CodeContainer accumulates the source code of one code interpreter call
// across its delta events.
type CodeContainer struct {
	// ID is the container identifier from the item, distinct from the
	// item_id the stream keys events by.
	ID string

	// ItemID is the opaque item identifier the container is tracked under.
	ItemID string

	// Code is the accumulated source, append-only until the final value
	// arrives on the matching done event.
	Code string

	Status ContainerStatus
}

// Tracker is a session-scoped table of code interpreter containers keyed by
// item_id. One Tracker belongs to exactly one stream and is owned by it; the
// table is discarded with the stream. Tracker is not safe for concurrent
// mutation; a single stream is processed by a single logical sequence of
// calls.
type Tracker struct {
	containers map[string]*CodeContainer
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		containers: make(map[string]*CodeContainer),
	}
}

// Track registers a container for itemID when the item is a code interpreter
// call, creating it on first sight. It returns the container id and true, or
// "" and false for any other item type (no-op, nothing recorded).
func (t *Tracker) Track(itemID string, item *responses.ItemSnapshot) (string, bool) {
	if item == nil || item.Type != responses.ItemTypeCodeInterpreterCall {
		return "", false
	}

	if c, ok := t.containers[itemID]; ok {
		return c.ID, true
	}

	c := &CodeContainer{
		ID:     item.ID,
		ItemID: itemID,
		Status: StatusCreated,
	}
	t.containers[itemID] = c

	return c.ID, true
}

// AppendDelta appends a code fragment to the container tracked for itemID
// and returns the updated container, or nil when no container is tracked
// (a missing container is not an error; the fragment still flows to the
// caller through the assembler).
func (t *Tracker) AppendDelta(itemID, code string) *CodeContainer {
	c, ok := t.containers[itemID]
	if !ok {
		return nil
	}

	c.Code += code

	return c
}

// MarkCodeComplete transitions the container for itemID to Interpreting,
// replacing (not appending) the accumulated code with finalCode when
// finalCode is non-empty. Calling it on a container already past Created
// is a no-op returning the container unchanged.
func (t *Tracker) MarkCodeComplete(itemID, finalCode string) *CodeContainer {
	c, ok := t.containers[itemID]
	if !ok {
		return nil
	}

	if c.Status != StatusCreated {
		return c
	}

	if finalCode != "" {
		c.Code = finalCode
	}
	c.Status = StatusInterpreting

	return c
}

// MarkCompleted transitions the container for itemID to Completed.
func (t *Tracker) MarkCompleted(itemID string) *CodeContainer {
	c, ok := t.containers[itemID]
	if !ok {
		return nil
	}

	if c.Status == StatusCompleted {
		return c
	}

	c.Status = StatusCompleted

	return c
}

// Get returns the container tracked for itemID, if any.
func (t *Tracker) Get(itemID string) (*CodeContainer, bool) {
	c, ok := t.containers[itemID]
	return c, ok
}

// Len returns the number of tracked containers.
func (t *Tracker) Len() int {
	return len(t.containers)
}
