// Package assistant turns group questions into history requests and answers
// them from a message selection, using two LLM clients.
package assistant

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"group-recall/internal/llm"
	"group-recall/internal/retrieval"
	"group-recall/internal/storage"
)

// Assistant is the language-model capability used by the command pipeline.
type Assistant interface {
	Interpret(ctx context.Context, text string, now time.Time) (retrieval.Request, error)
	Summarize(ctx context.Context, question string, msgs []storage.Message) (string, error)
}

var thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripReasoning removes <think>...</think> spans from a model reply.
func StripReasoning(s string) string {
	return strings.TrimSpace(thinkRe.ReplaceAllString(s, ""))
}

// ExtractJSONObject returns the outermost {...} span of s, tolerating prose or
// code fences around it.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

type LLMAssistant struct {
	interpreter llm.Client
	summarizer  llm.Client
	timeout     time.Duration
}

// New builds an assistant. A zero timeout leaves calls bounded only by ctx.
func New(interpreter, summarizer llm.Client, timeout time.Duration) *LLMAssistant {
	return &LLMAssistant{interpreter: interpreter, summarizer: summarizer, timeout: timeout}
}

func (a *LLMAssistant) Interpret(ctx context.Context, text string, now time.Time) (retrieval.Request, error) {
	msgs := []llm.Message{
		{Role: "system", Content: buildInterpretPrompt(now)},
		{Role: "user", Content: text + " /no_think"},
	}
	resp, err := a.generate(ctx, a.interpreter, msgs)
	if err != nil {
		return retrieval.Request{}, fmt.Errorf("interpret: %w", err)
	}
	log.Printf("🧭 Interpreter response [model=%s, tokens=%d]: %q", resp.Model, resp.TotalTokens, resp.Content)

	obj, ok := ExtractJSONObject(StripReasoning(resp.Content))
	if !ok {
		return retrieval.Request{}, fmt.Errorf("interpret: no JSON object in response")
	}
	req, err := retrieval.DecodeRequest([]byte(obj))
	if err != nil {
		return retrieval.Request{}, fmt.Errorf("interpret: %w", err)
	}
	return req, nil
}

func (a *LLMAssistant) Summarize(ctx context.Context, question string, history []storage.Message) (string, error) {
	msgs := []llm.Message{
		{Role: "user", Content: buildSummaryPrompt(question, history)},
	}
	resp, err := a.generate(ctx, a.summarizer, msgs)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	log.Printf("🤖 Model response [model=%s, tokens: prompt=%d, completion=%d, total=%d]",
		resp.Model, resp.PromptTokens, resp.CompletionTokens, resp.TotalTokens)
	return StripReasoning(resp.Content), nil
}

func (a *LLMAssistant) generate(ctx context.Context, c llm.Client, msgs []llm.Message) (llm.Response, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	return c.Generate(ctx, msgs)
}

func buildInterpretPrompt(now time.Time) string {
	return "You are an intelligent command parser. Work out which period of the group chat history " +
		"the user wants to look at. The current time is " + now.Format(retrieval.TimeLayout) + ".\n" +
		"Extract the following fields from the user input:\n" +
		"- type: always 'instruction'\n" +
		"- start_time (optional): start time formatted 'yyyy-mm-dd hh:mm'\n" +
		"- end_time (optional): end time formatted 'yyyy-mm-dd hh:mm'\n" +
		"- range (optional): relative period such as '6h', '2d', 'today', 'yesterday', 'week'\n" +
		"- count (optional): number of most recent messages\n" +
		"Return JSON only.\n" +
		"If nothing useful is specified, return " +
		`{"type": "instruction", "start_time": "null", "end_time": "null", "range": "null", "count": "null"}`
}

func buildSummaryPrompt(question string, history []storage.Message) string {
	var b strings.Builder
	b.WriteString("You are an intelligent assistant bot. Answer the question by combining the group chat record with your own knowledge. The group chat record:\n\n")
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Sender, m.Text)
	}
	fmt.Fprintf(&b, "\nThe user's question is: %s\n", question)
	b.WriteString("Answer in the same language as the question, without unnecessary remarks.")
	return b.String()
}
