package simulator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sleepstars/llmsim/internal/config"
	"github.com/sleepstars/llmsim/internal/logger"
	"github.com/sleepstars/llmsim/internal/models"
)

// Simulator computes everything a response needs before any bytes are
// written: token counts, the text-or-tool-call decision, and the delays
// that emulate prefill and decode. It holds no per-request state, so one
// instance serves any number of concurrent connections.
type Simulator struct {
	cfg    *config.Config
	logger *logger.Logger
}

// New creates a simulator bound to an immutable configuration.
func New(cfg *config.Config) *Simulator {
	return &Simulator{
		cfg:    cfg,
		logger: logger.GetLogger().WithComponent("simulator"),
	}
}

// Outcome is the single source of truth for one request. Both the
// blocking and the streaming paths render from the same Outcome, so they
// always agree on the branch and finish reason.
type Outcome struct {
	PromptTokens     int
	CompletionTokens int
	Decision         Decision
	TTFT             time.Duration
	DecodeTime       time.Duration
	ThinkingTime     time.Duration
}

// Run analyzes a request and produces the complete simulated outcome.
func (s *Simulator) Run(req *models.ChatCompletionRequest) Outcome {
	promptTokens := s.PromptTokens(req.Messages)
	completionTokens := s.CompletionTokens(req)
	userText := LastUserText(req.Messages)
	decision := s.Decide(userText, completionTokens)

	s.logger.Debug("analyzed request: prompt=%d completion=%d finish=%s",
		promptTokens, completionTokens, decision.FinishReason)

	return Outcome{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		Decision:         decision,
		TTFT:             s.TTFT(promptTokens),
		DecodeTime:       s.DecodeTime(completionTokens),
		ThinkingTime:     s.ThinkingTime(),
	}
}

// Usage builds the token accounting for the blocking response.
func (o Outcome) Usage() models.CompletionUsage {
	return models.CompletionUsage{
		PromptTokens:     o.PromptTokens,
		CompletionTokens: o.CompletionTokens,
		TotalTokens:      o.PromptTokens + o.CompletionTokens,
	}
}

// NewCompletionID produces a fresh response identifier in the
// chatcmpl-<epoch>-<rand4> form shared by both response shapes.
func NewCompletionID(created int64) string {
	return fmt.Sprintf("chatcmpl-%d-%d", created, rand.Intn(9000)+1000)
}

func newCallID() string {
	return fmt.Sprintf("call_%d", rand.Intn(9000)+1000)
}
