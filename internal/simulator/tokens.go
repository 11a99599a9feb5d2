package simulator

import (
	"strings"
	"unicode/utf8"

	"github.com/sleepstars/llmsim/internal/models"
)

// EstimateTokens approximates the token count of a text. This is a
// rune-count heuristic (chars_per_token characters per token, rounded
// up), not a real tokenizer; tune chars_per_token in the config to match
// a target model family.
func (s *Simulator) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	cpt := s.cfg.CharsPerToken
	if cpt < 1 {
		cpt = 1
	}
	est := (utf8.RuneCountInString(text) + cpt - 1) / cpt
	if est < 1 {
		est = 1
	}
	return est
}

// PromptTokens sums the estimate over every text fragment of every
// message, flattening both the plain-string and content-parts shapes.
func (s *Simulator) PromptTokens(messages []models.ChatMessage) int {
	total := 0
	for _, msg := range messages {
		for _, text := range msg.Content.Texts() {
			total += s.EstimateTokens(text)
		}
	}
	return total
}

// CompletionTokens resolves the requested response length: a positive
// max_tokens wins, anything else falls back to the configured default.
func (s *Simulator) CompletionTokens(req *models.ChatCompletionRequest) int {
	if req.MaxTokens > 0 {
		return int(req.MaxTokens)
	}
	return s.cfg.CompletionTokens
}

// LastUserText returns the text of the most recent user message, joining
// multiple content parts with newlines. A plain-string user message ends
// the scan even when empty; a parts list without any text does not.
// Empty string when no user message qualifies.
func LastUserText(messages []models.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != "user" {
			continue
		}
		content := messages[i].Content
		if !content.IsList() {
			return content.Text()
		}
		if texts := content.Texts(); len(texts) > 0 {
			return strings.Join(texts, "\n")
		}
	}
	return ""
}
