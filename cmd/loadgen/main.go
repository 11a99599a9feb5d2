package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sleepstars/llmsim/internal/client"
	"github.com/sleepstars/llmsim/internal/models"
)

// loadgen fires concurrent chat requests at a running emulator and
// reports latency percentiles, the way the emulator's load-testing users
// drive it.

type result struct {
	total time.Duration
	ttft  time.Duration
	err   error
}

func main() {
	baseURL := flag.String("url", "http://127.0.0.1:8000", "Emulator base URL")
	requests := flag.Int("n", 32, "Total number of requests")
	concurrency := flag.Int("c", 4, "Concurrent workers")
	stream := flag.Bool("stream", false, "Use streaming requests")
	prompt := flag.String("prompt", "hello world", "User prompt to send")
	maxTokens := flag.Int("max-tokens", 0, "max_tokens to request (0 = server default)")
	flag.Parse()

	c := client.New(client.Config{BaseURL: *baseURL})

	jobs := make(chan struct{})
	results := make(chan result, *requests)
	var wg sync.WaitGroup

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				results <- runOne(c, *prompt, *maxTokens, *stream)
			}
		}()
	}

	start := time.Now()
	for i := 0; i < *requests; i++ {
		jobs <- struct{}{}
	}
	close(jobs)
	wg.Wait()
	close(results)
	elapsed := time.Since(start)

	var totals, ttfts []time.Duration
	failures := 0
	for r := range results {
		if r.err != nil {
			failures++
			continue
		}
		totals = append(totals, r.total)
		if r.ttft > 0 {
			ttfts = append(ttfts, r.ttft)
		}
	}

	fmt.Printf("requests: %d  failures: %d  elapsed: %s\n",
		*requests, failures, elapsed.Round(time.Millisecond))
	report("latency", totals)
	if *stream {
		report("ttft", ttfts)
	}
}

func runOne(c *client.Client, prompt string, maxTokens int, stream bool) result {
	req := &models.ChatCompletionRequest{
		Messages: []models.ChatMessage{
			{Role: "user", Content: models.TextContent(prompt)},
		},
		MaxTokens: models.TokenCount(maxTokens),
	}

	start := time.Now()
	if !stream {
		_, err := c.Complete(context.Background(), req)
		return result{total: time.Since(start), err: err}
	}

	chunks, err := c.CompleteStream(context.Background(), req)
	if err != nil {
		return result{err: err}
	}
	var ttft time.Duration
	for range chunks {
		if ttft == 0 {
			ttft = time.Since(start)
		}
	}
	return result{total: time.Since(start), ttft: ttft}
}

func report(name string, samples []time.Duration) {
	if len(samples) == 0 {
		return
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	fmt.Printf("%s: p50=%s p90=%s p99=%s max=%s\n", name,
		pct(samples, 50), pct(samples, 90), pct(samples, 99),
		samples[len(samples)-1].Round(time.Millisecond))
}

func pct(sorted []time.Duration, p int) time.Duration {
	idx := p * len(sorted) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx].Round(time.Millisecond)
}
