package generator_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/becomeliminal/mindcare/generator"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *generator.Anthropic {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return generator.NewAnthropic("test-key",
		generator.WithModel("claude-test"),
		generator.WithRequestOptions(
			option.WithBaseURL(server.URL),
			option.WithMaxRetries(0),
		),
	)
}

func TestAnthropic_Generate(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int64  `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
	}

	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [
				{"type": "text", "text": "  Your car is "},
				{"type": "text", "text": "in the driveway.  "}
			],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 42, "output_tokens": 9}
		}`))
	})

	answer, err := gen.Generate(context.Background(), "where is my car", []string{
		"I moved my car to the driveway",
		"I parked my car in the garage",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if answer != "Your car is in the driveway." {
		t.Errorf("unexpected answer %q", answer)
	}

	if got.Model != "claude-test" {
		t.Errorf("expected model claude-test, got %q", got.Model)
	}
	if got.MaxTokens != generator.DefaultMaxTokens {
		t.Errorf("expected max_tokens %d, got %d", generator.DefaultMaxTokens, got.MaxTokens)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Fatalf("expected one user message, got %+v", got.Messages)
	}
	prompt := got.Messages[0].Content[0].Text
	if !strings.Contains(prompt, "- I moved my car to the driveway") {
		t.Errorf("prompt missing memory: %q", prompt)
	}
	if !strings.Contains(prompt, "Question: where is my car") {
		t.Errorf("prompt missing question: %q", prompt)
	}
}

func TestAnthropic_GenerateAPIError(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
	})

	if _, err := gen.Generate(context.Background(), "q", []string{"m"}); err == nil {
		t.Fatal("expected error from failed API call")
	}
}

func TestAnthropic_GenerateWithoutMemories(t *testing.T) {
	called := false
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	if _, err := gen.Generate(context.Background(), "q", nil); err == nil {
		t.Fatal("expected error without memories")
	}
	if called {
		t.Error("API should not be called without memories")
	}
}

func TestPrompt(t *testing.T) {
	got := generator.Prompt("where are my keys", []string{"a", "b"})
	want := "Memories (newest first):\n- a\n- b\n\nQuestion: where are my keys"
	if got != want {
		t.Errorf("Prompt() = %q, want %q", got, want)
	}
}
