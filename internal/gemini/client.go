// Package gemini generates numbered answers for extracted assignment text
// via the Gemini generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/inkscript/inkscript/internal/sanitize"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// sampleSolution is returned when no API key is configured, so the
// rendering pipeline stays usable in development.
const sampleSolution = "1. Sample solution for question one.\n" +
	"2. Sample solution for question two.\n" +
	"3. Sample solution for question three."

const promptPreamble = "You are a teacher solving a student's assignment.\n" +
	"Provide only numbered answers (1., 2., ...) without repeating questions.\n" +
	"Avoid using *, **, or double line breaks (\\n\\n).\n\n"

type Client struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
}

func New(apiKey, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpc:   http.DefaultClient,
	}
}

// Configured reports whether an API key is present. Without one, Solve
// degrades to a canned sample solution.
func (c *Client) Configured() bool { return c.apiKey != "" }

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Solve asks the model for numbered answers to the given question text and
// returns the cleaned response. Empty model output is retried a couple of
// times before giving up.
func (c *Client) Solve(ctx context.Context, questions string) (string, error) {
	if !c.Configured() {
		return sampleSolution, nil
	}

	const maxAttempts = 3
	for attempt := 1; ; attempt++ {
		text, err := c.generate(ctx, promptPreamble+questions)
		if err != nil {
			return "", err
		}
		if cleaned := sanitize.StripModelNoise(text); cleaned != "" {
			return cleaned, nil
		}
		if attempt == maxAttempts {
			return "", fmt.Errorf("gemini: empty response after %d attempts", attempt)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return "", fmt.Errorf("gemini error %d: %s", resp.StatusCode, string(slurp))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, cand := range parsed.Candidates {
		for _, p := range cand.Content.Parts {
			b.WriteString(p.Text)
		}
		break // only the first candidate
	}
	return b.String(), nil
}
