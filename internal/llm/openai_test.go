package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIClient_GenerateAgainstCompatibleEndpoint(t *testing.T) {
	var gotModel, gotReferrer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		gotReferrer = r.Header.Get("HTTP-Referer")
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"hello"}}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`))
	}))
	defer srv.Close()

	c := NewOpenAI("ollama", srv.URL+"/v1", "qwen3:0.6b", "https://example.org", "")
	resp, err := c.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Content != "hello" || resp.TotalTokens != 4 || resp.Model != "qwen3:0.6b" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if gotModel != "qwen3:0.6b" || gotReferrer != "https://example.org" {
		t.Fatalf("request not forwarded as expected: model=%q referrer=%q", gotModel, gotReferrer)
	}
}

func TestFactory_UnknownProvider(t *testing.T) {
	f := &Factory{}
	if _, err := f.CreateClient("nope", "m"); err == nil {
		t.Fatalf("expected error")
	}
	c, err := f.CreateClient("OpenAI", "m")
	if err != nil || c == nil {
		t.Fatalf("openai client: %v", err)
	}
}
