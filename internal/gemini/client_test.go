package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New("test-key", "gemini-2.0-flash")
	c.baseURL = srv.URL
	c.httpc = srv.Client()
	return c
}

func candidateJSON(text string) string {
	resp := generateResponse{}
	resp.Candidates = []struct {
		Content content `json:"content"`
	}{{Content: content{Parts: []part{{Text: text}}}}}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestSolveSendsPromptAndQuestions(t *testing.T) {
	var gotBody generateRequest
	var gotPath, gotKey string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(candidateJSON("1. forty two")))
	})

	got, err := c.Solve(context.Background(), "What is 6 times 7?")
	if err != nil {
		t.Fatal(err)
	}
	if got != "1. forty two" {
		t.Errorf("Solve = %q", got)
	}
	if gotPath != "/v1beta/models/gemini-2.0-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	prompt := gotBody.Contents[0].Parts[0].Text
	if !strings.Contains(prompt, "What is 6 times 7?") {
		t.Errorf("prompt missing questions: %q", prompt)
	}
	if !strings.Contains(prompt, "numbered answers") {
		t.Errorf("prompt missing instructions: %q", prompt)
	}
}

func TestSolveCleansModelNoise(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(candidateJSON("**1. bold answer**\n\n\n2. second")))
	})

	got, err := c.Solve(context.Background(), "q")
	if err != nil {
		t.Fatal(err)
	}
	if got != "1. bold answer\n2. second" {
		t.Errorf("Solve = %q", got)
	}
}

func TestSolveRetriesEmptyResponses(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.Write([]byte(candidateJSON("   ")))
			return
		}
		w.Write([]byte(candidateJSON("1. finally")))
	})

	got, err := c.Solve(context.Background(), "q")
	if err != nil {
		t.Fatal(err)
	}
	if got != "1. finally" {
		t.Errorf("Solve = %q", got)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestSolveGivesUpAfterRetries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(candidateJSON("")))
	})

	if _, err := c.Solve(context.Background(), "q"); err == nil {
		t.Fatal("expected error for persistently empty responses")
	}
}

func TestSolveSurfacesAPIErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	})

	_, err := c.Solve(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error %q should carry the status code", err)
	}
}

func TestSolveWithoutKeyReturnsSample(t *testing.T) {
	c := New("", "gemini-2.0-flash")
	got, err := c.Solve(context.Background(), "anything")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "1. Sample solution") {
		t.Errorf("Solve = %q, want canned sample", got)
	}
	if c.Configured() {
		t.Error("Configured() should be false without a key")
	}
}
