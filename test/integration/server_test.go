package integration

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sleepstars/llmsim/internal/client"
	"github.com/sleepstars/llmsim/internal/config"
	"github.com/sleepstars/llmsim/internal/logger"
	"github.com/sleepstars/llmsim/internal/models"
	"github.com/sleepstars/llmsim/internal/server"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.InitLogger(logger.WARN, "integration_test")
}

// fastConfig keeps the simulated delays real but tiny so the full sleep
// path is exercised without slowing the suite down.
func fastConfig() *config.Config {
	cfg := config.Default()
	cfg.PrefillTPS = 1000000
	cfg.DecodeTPS = 100000
	cfg.ThinkingTokens = 1
	return cfg
}

func startEmulator(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(server.New(cfg).Router())
	t.Cleanup(ts.Close)
	return ts
}

func openaiClient(ts *httptest.Server) *openai.Client {
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = ts.URL + "/v1"
	return openai.NewClientWithConfig(cfg)
}

func TestOpenAIClientBlocking(t *testing.T) {
	ts := startEmulator(t, fastConfig())
	cli := openaiClient(ts)

	resp, err := cli.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
		Model: "emulated-vllm",
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "hello world"},
		},
		MaxTokens: 10,
	})

	assert.NoError(t, err)
	assert.Equal(t, "emulated-vllm", resp.Model)
	assert.Equal(t, 3, resp.Usage.PromptTokens)
	assert.Equal(t, 10, resp.Usage.CompletionTokens)
	assert.Equal(t, 13, resp.Usage.TotalTokens)
	assert.Len(t, resp.Choices, 1)
	assert.Equal(t, openai.FinishReasonStop, resp.Choices[0].FinishReason)
	assert.Equal(t, "Simulated response (10 tok)", resp.Choices[0].Message.Content)
}

func TestOpenAIClientToolCall(t *testing.T) {
	ts := startEmulator(t, fastConfig())
	cli := openaiClient(ts)

	resp, err := cli.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
		Model: "emulated-vllm",
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "def foo(): pass"},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, openai.FinishReasonToolCalls, resp.Choices[0].FinishReason)
	assert.Empty(t, resp.Choices[0].Message.Content)
	assert.Len(t, resp.Choices[0].Message.ToolCalls, 1)

	call := resp.Choices[0].Message.ToolCalls[0]
	assert.Equal(t, "search_file_content", call.Function.Name)
	assert.Contains(t, call.Function.Arguments, `"pattern":"def "`)
	assert.Contains(t, call.Function.Arguments, `"path":"."`)
}

func TestOpenAIClientStreaming(t *testing.T) {
	ts := startEmulator(t, fastConfig())
	cli := openaiClient(ts)

	stream, err := cli.CreateChatCompletionStream(context.Background(), openai.ChatCompletionRequest{
		Model: "emulated-vllm",
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "def foo(): pass"},
		},
	})
	assert.NoError(t, err)
	defer stream.Close()

	var chunks []openai.ChatCompletionStreamResponse
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		assert.NoError(t, err)
		chunks = append(chunks, chunk)
	}

	assert.Len(t, chunks, 3)
	assert.Equal(t, "assistant", chunks[0].Choices[0].Delta.Role)
	assert.Len(t, chunks[1].Choices[0].Delta.ToolCalls, 1)
	assert.Equal(t, "search_file_content", chunks[1].Choices[0].Delta.ToolCalls[0].Function.Name)
	assert.Equal(t, openai.FinishReasonToolCalls, chunks[2].Choices[0].FinishReason)

	for _, chunk := range chunks {
		assert.Equal(t, chunks[0].ID, chunk.ID)
		assert.Equal(t, "emulated-vllm", chunk.Model)
	}
}

func TestEmulatorClientRoundTrip(t *testing.T) {
	ts := startEmulator(t, fastConfig())
	c := client.New(client.Config{BaseURL: ts.URL})

	resp, err := c.Complete(context.Background(), &models.ChatCompletionRequest{
		Messages: []models.ChatMessage{
			{Role: "user", Content: models.TextContent("tell me a joke")},
		},
		MaxTokens: 16,
	})
	assert.NoError(t, err)
	assert.Equal(t, "stop", resp.Choices[0].FinishReason)
	assert.Equal(t, 16, resp.Usage.CompletionTokens)

	chunks, err := c.CompleteStream(context.Background(), &models.ChatCompletionRequest{
		Messages: []models.ChatMessage{
			{Role: "user", Content: models.TextContent("tell me a joke")},
		},
	})
	assert.NoError(t, err)

	var received []*models.ChatCompletionChunk
	for chunk := range chunks {
		received = append(received, chunk)
	}
	assert.Len(t, received, 3)
	assert.Equal(t, "assistant", received[0].Choices[0].Delta.Role)
	assert.Contains(t, received[1].Choices[0].Delta.Content, "Simulated response")
	assert.Equal(t, "stop", *received[2].Choices[0].FinishReason)
}

func TestConcurrentRequestsAreIsolated(t *testing.T) {
	// Each request blocks for its own simulated latency (~200ms decode);
	// concurrent requests must overlap instead of queueing.
	cfg := config.Default()
	cfg.DecodeTPS = 50 // 10 tokens -> 200ms decode
	ts := startEmulator(t, cfg)
	c := client.New(client.Config{BaseURL: ts.URL})

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	start := time.Now()
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Complete(context.Background(), &models.ChatCompletionRequest{
				Messages: []models.ChatMessage{
					{Role: "user", Content: models.TextContent("hi")},
				},
				MaxTokens: 10,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	elapsed := time.Since(start)

	for err := range errs {
		assert.NoError(t, err)
	}
	// Serial execution would take workers * 200ms.
	assert.Less(t, elapsed, workers*200*time.Millisecond/2,
		"requests appear to be serialized")
}

func TestUnknownPath404(t *testing.T) {
	ts := startEmulator(t, fastConfig())

	resp, err := ts.Client().Get(ts.URL + "/unknown")
	assert.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Empty(t, body)
}
