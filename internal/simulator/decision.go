package simulator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sleepstars/llmsim/internal/models"
)

const (
	// FinishReasonStop marks a plain-text response.
	FinishReasonStop = "stop"
	// FinishReasonToolCalls marks a tool-call response.
	FinishReasonToolCalls = "tool_calls"

	toolName = "search_file_content"
	toolPath = "."
)

type searchArguments struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path"`
}

// Decision is the simulated reply for one request: either a single tool
// call or plain text, never both. FinishReason correlates 1:1 with the
// populated variant.
type Decision struct {
	ToolCall     *models.ToolCall
	Content      string
	FinishReason string
}

// Decide scans the last user text for the first trigger pattern, in
// catalog order regardless of where each pattern occurs in the text. A
// match yields a tool-call decision carrying the matched literal; no
// match yields the plain-text fallback sized by completionTokens.
func (s *Simulator) Decide(userText string, completionTokens int) Decision {
	for _, pattern := range s.cfg.TriggerPatterns {
		if !strings.Contains(userText, pattern) {
			continue
		}
		args, _ := json.Marshal(searchArguments{Pattern: pattern, Path: toolPath})
		return Decision{
			ToolCall: &models.ToolCall{
				Index: 0,
				ID:    newCallID(),
				Type:  "function",
				Function: models.ToolCallFunction{
					Name:      toolName,
					Arguments: string(args),
				},
			},
			FinishReason: FinishReasonToolCalls,
		}
	}

	return Decision{
		Content:      fmt.Sprintf("Simulated response (%d tok)", completionTokens),
		FinishReason: FinishReasonStop,
	}
}

// Message renders the decision as the full assistant message of a
// blocking response.
func (d Decision) Message() models.AssistantMessage {
	if d.ToolCall != nil {
		return models.AssistantMessage{
			Role:      "assistant",
			Content:   nil,
			ToolCalls: []models.ToolCall{*d.ToolCall},
		}
	}
	content := d.Content
	return models.AssistantMessage{Role: "assistant", Content: &content}
}

// Delta renders the decision as the body delta of a streamed response.
func (d Decision) Delta() models.ChunkDelta {
	if d.ToolCall != nil {
		return models.ChunkDelta{ToolCalls: []models.ToolCall{*d.ToolCall}}
	}
	return models.ChunkDelta{Content: d.Content}
}
