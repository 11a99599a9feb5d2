package models

import "encoding/json"

// ChatCompletionRequest represents an incoming chat completion request.
// All fields are optional on the wire; missing values fall back to the
// simulator defaults.
type ChatCompletionRequest struct {
	Model     string        `json:"model,omitempty"`
	Messages  []ChatMessage `json:"messages,omitempty"`
	Stream    bool          `json:"stream,omitempty"`
	MaxTokens TokenCount    `json:"max_tokens,omitempty"`
}

// ChatMessage represents a message in the chat
type ChatMessage struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
}

// MessageContent accepts the two content shapes OpenAI clients send: a
// plain string, or a list of content parts where each part may carry a
// "text" field. Any other shape decodes to empty content rather than
// failing the whole request.
type MessageContent struct {
	text   string
	parts  []map[string]interface{}
	isList bool
}

// TextContent builds a plain-string content value.
func TextContent(s string) MessageContent {
	return MessageContent{text: s}
}

// PartsContent builds a content-parts list value.
func PartsContent(parts ...map[string]interface{}) MessageContent {
	return MessageContent{parts: parts, isList: true}
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = MessageContent{text: s}
		return nil
	}
	var parts []map[string]interface{}
	if err := json.Unmarshal(data, &parts); err == nil {
		*c = MessageContent{parts: parts, isList: true}
		return nil
	}
	// null or an unrecognized shape carries no usable text
	*c = MessageContent{}
	return nil
}

func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.isList {
		return json.Marshal(c.parts)
	}
	return json.Marshal(c.text)
}

// IsList reports whether the content arrived as a content-parts list
// rather than a plain string.
func (c MessageContent) IsList() bool {
	return c.isList
}

// Text returns the plain-string content. Empty for the list shape.
func (c MessageContent) Text() string {
	return c.text
}

// Texts returns the text fragments of the content in order. Parts without
// a string "text" field are skipped.
func (c MessageContent) Texts() []string {
	if !c.isList {
		if c.text == "" {
			return nil
		}
		return []string{c.text}
	}
	var texts []string
	for _, part := range c.parts {
		if txt, ok := part["text"].(string); ok {
			texts = append(texts, txt)
		}
	}
	return texts
}

// TokenCount is a lenient max_tokens value: anything other than a positive
// JSON integer (absent, null, negative, fractional, or a string) decodes
// to zero so the caller can substitute the default.
type TokenCount int

func (n *TokenCount) UnmarshalJSON(data []byte) error {
	*n = 0
	var v int
	if err := json.Unmarshal(data, &v); err == nil && v > 0 {
		*n = TokenCount(v)
	}
	return nil
}

// ToolCallFunction names the invoked function and carries its arguments
// as a JSON-encoded string, per the OpenAI wire format.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCall represents a function invocation embedded in an assistant
// message. The emulator produces at most one per response, always at
// index 0.
type ToolCall struct {
	Index    int              `json:"index"`
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// AssistantMessage is the simulated reply. Exactly one variant is
// populated: plain text (Content non-nil, no ToolCalls) or a tool call
// (Content null, one ToolCall).
type AssistantMessage struct {
	Role      string     `json:"role"`
	Content   *string    `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ChatCompletionChoice represents a completion choice
type ChatCompletionChoice struct {
	Index        int              `json:"index"`
	Message      AssistantMessage `json:"message"`
	FinishReason string           `json:"finish_reason"`
}

// CompletionUsage reports the simulated token accounting. TotalTokens is
// always PromptTokens + CompletionTokens.
type CompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionResponse represents the blocking response from the chat
// completion API.
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Created int64                  `json:"created"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`
	Usage   CompletionUsage        `json:"usage"`
}

// ChunkDelta carries the partial assistant-message update of one stream
// chunk.
type ChunkDelta struct {
	Role      string     `json:"role,omitempty"`
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ChunkChoice pairs a delta with a finish reason that stays null until
// the terminal chunk.
type ChunkChoice struct {
	Index        int        `json:"index"`
	Delta        ChunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

// ChatCompletionChunk is one server-sent event of a streamed response.
// Every chunk of a stream shares the same ID and model.
type ChatCompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}
