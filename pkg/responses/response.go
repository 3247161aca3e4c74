package responses

import (
	"encoding/json"
	"fmt"
)

// Response represents a complete (non-streaming) Responses API body, and is
// also the shape nested under the "response" key of lifecycle stream events.
type Response struct {
	ID        string `json:"id"`
	Object    string `json:"object,omitempty"` // "response"
	Model     string `json:"model,omitempty"`
	Status    string `json:"status,omitempty"` // queued, in_progress, completed, failed, incomplete

	// CreatedAt is epoch seconds. The upstream API has emitted this under
	// both "created" and "created_at" across versions; UnmarshalJSON
	// accepts either.
	CreatedAt int64 `json:"created_at,omitempty"`

	Output            []OutputItem       `json:"output,omitempty"`
	Usage             *Usage             `json:"usage,omitempty"`
	Error             *APIError          `json:"error,omitempty"`
	IncompleteDetails *IncompleteDetails `json:"incomplete_details,omitempty"`
	Metadata          map[string]string  `json:"metadata,omitempty"`
}

// responseAlias avoids UnmarshalJSON recursion.
type responseAlias Response

// UnmarshalJSON decodes a Response, mapping either "created" or "created_at"
// onto CreatedAt. Both spellings are observed from the upstream API.
func (r *Response) UnmarshalJSON(data []byte) error {
	var alias struct {
		responseAlias
		Created *int64 `json:"created"`
	}
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	*r = Response(alias.responseAlias)
	if r.CreatedAt == 0 && alias.Created != nil {
		r.CreatedAt = *alias.Created
	}

	return nil
}

// OutputItem is one entry in a response's output array. Type is free-form
// ("message", "function_call", "reasoning", "code_interpreter_call", ...);
// the set grows with the upstream API.
type OutputItem struct {
	ID        string        `json:"id,omitempty"`
	Type      string        `json:"type,omitempty"`
	Role      string        `json:"role,omitempty"`
	Status    string        `json:"status,omitempty"`
	Name      string        `json:"name,omitempty"`
	CallID    string        `json:"call_id,omitempty"`
	Arguments string        `json:"arguments,omitempty"`
	Content   []ContentPart `json:"content,omitempty"`
	Summary   []SummaryPart `json:"summary,omitempty"`
}

// ContentPart is one content fragment within an output item.
type ContentPart struct {
	Type        string `json:"type,omitempty"` // "output_text", "text", "status", "refusal"
	Text        string `json:"text,omitempty"`
	Index       *int   `json:"index,omitempty"`
	Annotations []any  `json:"annotations,omitempty"`
}

// SummaryPart is one reasoning summary fragment.
type SummaryPart struct {
	Type string `json:"type,omitempty"` // "summary_text"
	Text string `json:"text,omitempty"`
}

// Usage contains token accounting for a response.
type Usage struct {
	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`
	TotalTokens  int `json:"total_tokens,omitempty"`

	OutputTokensDetails *OutputTokensDetails `json:"output_tokens_details,omitempty"`
}

// OutputTokensDetails breaks down output token counts.
type OutputTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens,omitempty"`
}

// IncompleteDetails explains why a response stopped early.
type IncompleteDetails struct {
	Reason string `json:"reason,omitempty"`
}

// APIError is an error object returned by the Responses API, either as a
// top-level error body or nested in a failed response.
type APIError struct {
	Code    string `json:"code,omitempty"`
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("responses api error (%s): %s", e.Code, e.Message)
	}
	return "responses api error: " + e.Message
}

// GetText returns the concatenated output_text content across all output
// items. Convenience for simple text-only responses.
func (r *Response) GetText() string {
	var result string
	for _, item := range r.Output {
		for _, part := range item.Content {
			result += part.Text
		}
	}
	return result
}
