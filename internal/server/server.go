package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sleepstars/llmsim/internal/config"
	"github.com/sleepstars/llmsim/internal/logger"
	"github.com/sleepstars/llmsim/internal/metrics"
	"github.com/sleepstars/llmsim/internal/models"
	"github.com/sleepstars/llmsim/internal/simulator"
)

const serverName = "vLLM-Emulator/0.1"

// Sleeper blocks for the given duration or until the context is done.
// The server applies simulated latency through it; tests substitute a
// fake that records the requested delays.
type Sleeper func(ctx context.Context, d time.Duration) error

func realSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Server wires the simulator to the OpenAI-compatible HTTP surface. Each
// request is handled in isolation; the only shared state is the
// read-only configuration, so no locking is needed across connections.
type Server struct {
	cfg     *config.Config
	sim     *simulator.Simulator
	metrics *metrics.Metrics
	sleep   Sleeper
	logger  *logger.Logger
}

// New creates a server for the given configuration.
func New(cfg *config.Config) *Server {
	return &Server{
		cfg:     cfg,
		sim:     simulator.New(cfg),
		metrics: metrics.New(),
		sleep:   realSleep,
		logger:  logger.GetLogger().WithComponent("server"),
	}
}

// SetSleeper replaces the latency sleeper. Tests use this to observe the
// requested delays without waiting them out.
func (s *Server) SetSleeper(sleep Sleeper) {
	s.sleep = sleep
}

// Router builds the HTTP routing table. Everything outside the chat
// endpoint (and the optional metrics path) answers 404 with an empty
// body.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Header("Server", serverName)
	})

	r.POST("/v1/chat/completions", s.chatCompletions)
	if s.cfg.MetricsPath != "" {
		r.GET(s.cfg.MetricsPath, gin.WrapH(s.metrics.Handler()))
	}
	r.NoRoute(func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	return r
}

// Run starts serving on the configured address and blocks.
func (s *Server) Run() error {
	s.logger.Info("emulator listening on http://%s", s.cfg.Addr())
	return s.Router().Run(s.cfg.Addr())
}

func (s *Server) chatCompletions(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// A missing body means an empty request with all defaults.
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	var req models.ChatCompletionRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		s.logger.Warn("malformed request body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Model == "" {
		req.Model = s.cfg.Model
	}

	// One outcome per request: the streamed and blocking paths render
	// the same decision, so the branch never diverges between them.
	out := s.sim.Run(&req)
	s.logger.Info("chat request: model=%s stream=%v finish=%s",
		req.Model, req.Stream, out.Decision.FinishReason)

	if req.Stream {
		s.streamCompletion(c, &req, out)
		return
	}
	s.blockingCompletion(c, &req, out)
}

func (s *Server) blockingCompletion(c *gin.Context, req *models.ChatCompletionRequest, out simulator.Outcome) {
	total := out.TTFT + out.DecodeTime
	if err := s.sleep(c.Request.Context(), total); err != nil {
		// Peer went away before the response was due.
		return
	}

	created := time.Now().Unix()
	resp := &models.ChatCompletionResponse{
		ID:      simulator.NewCompletionID(created),
		Object:  "chat.completion",
		Created: created,
		Model:   req.Model,
		Choices: []models.ChatCompletionChoice{{
			Index:        0,
			Message:      out.Decision.Message(),
			FinishReason: out.Decision.FinishReason,
		}},
		Usage: out.Usage(),
	}

	s.metrics.Observe(false, out.Decision.FinishReason, total)
	c.JSON(http.StatusOK, resp)
}
