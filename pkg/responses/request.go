// Package responses defines the request and response models for the OpenAI
// Responses API. These are the shared types consumed by the HTTP client in
// pkg/client and the streaming decoder in pkg/stream.
package responses

import "encoding/json"

// Request represents a Responses API create request (POST /v1/responses).
type Request struct {
	// Model name (e.g., "gpt-4o", "o4-mini")
	Model string `json:"model"`

	// Input is the list of input items for this turn.
	Input []InputItem `json:"input,omitempty"`

	// Instructions is the system-level instruction text.
	Instructions string `json:"instructions,omitempty"`

	// Whether to stream the response as SSE
	Stream bool `json:"stream,omitempty"`

	// Generation parameters
	MaxOutputTokens *int     `json:"max_output_tokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"top_p,omitempty"`

	// Tool configuration
	Tools      []Tool `json:"tools,omitempty"`
	ToolChoice any    `json:"tool_choice,omitempty"`

	// Reasoning configuration (o-series and gpt-5 family models)
	Reasoning *ReasoningConfig `json:"reasoning,omitempty"`

	// PreviousResponseID threads multi-turn conversations without
	// resending the full input history.
	PreviousResponseID string `json:"previous_response_id,omitempty"`

	// Store controls server-side persistence of the response.
	Store *bool `json:"store,omitempty"`

	// Metadata attaches up to 16 free-form key-value pairs.
	Metadata map[string]string `json:"metadata,omitempty"`

	// RawRequest preserves the original payload for debugging.
	RawRequest json.RawMessage `json:"-"`
}

// InputItem is a single item in a request's input array.
type InputItem struct {
	Type    string         `json:"type,omitempty"` // "message"
	Role    string         `json:"role,omitempty"` // "system", "user", "assistant"
	Content []InputContent `json:"content,omitempty"`
}

// InputContent is one content block within an input item.
type InputContent struct {
	Type     string `json:"type"` // "input_text", "input_image", "input_file"
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	FileID   string `json:"file_id,omitempty"`
}

// Tool declares a tool the model may call.
type Tool struct {
	Type string `json:"type"` // "function", "code_interpreter", "file_search", "web_search", "mcp"

	// Function tools
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
	Strict      *bool  `json:"strict,omitempty"`

	// Code interpreter tools
	Container any `json:"container,omitempty"`
}

// ReasoningConfig controls reasoning effort and summary emission.
type ReasoningConfig struct {
	Effort  string `json:"effort,omitempty"`  // "low", "medium", "high"
	Summary string `json:"summary,omitempty"` // "auto", "concise", "detailed"
}

// NewTextRequest builds a minimal single-turn request from a user prompt.
func NewTextRequest(model, prompt string) *Request {
	return &Request{
		Model: model,
		Input: []InputItem{
			{
				Type: "message",
				Role: "user",
				Content: []InputContent{
					{Type: "input_text", Text: prompt},
				},
			},
		},
	}
}
