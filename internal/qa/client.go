// Package qa talks to the question-answering service that holds the
// transcript index and does the actual retrieval and generation.
package qa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultBaseURL is where the service listens by default.
const DefaultBaseURL = "http://localhost:5000"

// The first question for a video makes the service fetch and embed the
// whole transcript, which can take a while.
const defaultTimeout = 120 * time.Second

type chatRequest struct {
	VideoID  string `json:"video_id"`
	Question string `json:"question"`
}

type chatResponse struct {
	Answer string `json:"answer"`
	Error  string `json:"error"`
}

// Client issues chat requests against one service instance.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for the service at base (no trailing slash needed).
func New(base string) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: defaultTimeout},
	}
}

// BaseURL returns the service address the client was built with.
func (c *Client) BaseURL() string {
	return c.base
}

// Ask sends one question about videoID and returns the answer text.
//
// Returned errors are user-presentable: a structured error from the
// response body when the service provides one, otherwise a connectivity
// or HTTP-status fallback.
func (c *Client) Ask(ctx context.Context, videoID, question string) (string, error) {
	body, err := json.Marshal(chatRequest{VideoID: videoID, Question: question})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("Could not connect to server at %s", c.base)
	}
	defer resp.Body.Close()

	var result chatResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && result.Error != "" {
			return "", errors.New(result.Error)
		}
		return "", fmt.Errorf("server returned HTTP %d", resp.StatusCode)
	}

	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	if result.Answer == "" {
		// A 2xx without an answer field; don't render an empty bubble.
		return "", errors.New("empty answer from server")
	}
	return result.Answer, nil
}
