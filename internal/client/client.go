package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sleepstars/llmsim/internal/models"
)

// streamDone is the literal sentinel that terminates an SSE stream.
const streamDone = "[DONE]"

// Config contains configuration for the emulator client
type Config struct {
	// BaseURL is the emulator's root address, e.g. http://127.0.0.1:8000.
	BaseURL string
	// HTTPClient overrides the transport; nil uses http.DefaultClient
	// semantics with no timeout, since simulated latency is the point.
	HTTPClient *http.Client
}

// Client is a minimal Go client for the emulator's chat-completions
// endpoint, used by the load generator and the integration tests.
type Client struct {
	config Config
	client *http.Client
}

// New creates a new emulator client
func New(config Config) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		config: config,
		client: httpClient,
	}
}

func (c *Client) endpoint() string {
	return strings.TrimSuffix(c.config.BaseURL, "/") + "/v1/chat/completions"
}

// Complete sends a blocking completion request to the emulator.
func (c *Client) Complete(ctx context.Context, req *models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
	req.Stream = false

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result models.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}

// CompleteStream sends a streaming completion request and yields each
// chunk as it arrives. The channel closes after the [DONE] sentinel, on
// error, or when ctx is cancelled.
func (c *Client) CompleteStream(ctx context.Context, req *models.ChatCompletionRequest) (<-chan *models.ChatCompletionChunk, error) {
	req.Stream = true

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	chunkChan := make(chan *models.ChatCompletionChunk)

	go func() {
		defer close(chunkChan)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			payload := strings.TrimPrefix(line, "data: ")
			if payload == streamDone {
				return
			}

			var chunk models.ChatCompletionChunk
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				return
			}

			select {
			case <-ctx.Done():
				return
			case chunkChan <- &chunk:
			}
		}
	}()

	return chunkChan, nil
}
