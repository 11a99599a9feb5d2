package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sleepstars/llmsim/internal/models"
	"github.com/sleepstars/llmsim/internal/simulator"
)

// streamCompletion writes the four-event SSE sequence: role delta, body
// delta (tool call or content), terminal chunk, and the [DONE] marker.
// Every event is flushed on its own so clients observe incremental
// arrival, and any write failure or peer disconnect ends the stream
// without touching other connections.
func (s *Server) streamCompletion(c *gin.Context, req *models.ChatCompletionRequest, out simulator.Outcome) {
	ctx := c.Request.Context()
	w := c.Writer

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	w.Flush()

	streamID := simulator.NewCompletionID(time.Now().Unix())

	writeChunk := func(delta models.ChunkDelta, finish *string) error {
		chunk := models.ChatCompletionChunk{
			ID:      streamID,
			Object:  "chat.completion.chunk",
			Created: time.Now().Unix(),
			Model:   req.Model,
			Choices: []models.ChunkChoice{{
				Index:        0,
				Delta:        delta,
				FinishReason: finish,
			}},
		}
		payload, err := json.Marshal(chunk)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		w.Flush()
		return nil
	}

	// Prefill delay, then the role announcement.
	if err := s.sleep(ctx, out.TTFT); err != nil {
		return
	}
	if err := writeChunk(models.ChunkDelta{Role: "assistant"}, nil); err != nil {
		s.logger.Warn("client write error: %v", err)
		return
	}

	// Tool calls arrive after a short thinking delay; plain content
	// takes the full decode time.
	bodyDelay := out.DecodeTime
	if out.Decision.ToolCall != nil {
		bodyDelay = out.ThinkingTime
	}
	if err := s.sleep(ctx, bodyDelay); err != nil {
		return
	}
	if err := writeChunk(out.Decision.Delta(), nil); err != nil {
		s.logger.Warn("client write error: %v", err)
		return
	}

	finish := out.Decision.FinishReason
	if err := writeChunk(models.ChunkDelta{}, &finish); err != nil {
		s.logger.Warn("client write error: %v", err)
		return
	}

	if _, err := fmt.Fprint(w, "data: [DONE]\n\n"); err != nil {
		s.logger.Warn("client write error: %v", err)
		return
	}
	w.Flush()

	s.metrics.Observe(true, finish, out.TTFT+bodyDelay)
}
