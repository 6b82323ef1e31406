// Package llm provides the language-structuring client. It asks an
// OpenAI-compatible chat API (Groq by default) for a short section title and
// cross-links against prior captures, and degrades to a deterministic local
// fallback whenever the collaborator fails.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Priyank911/mapping/internal/session"
)

const (
	// DefaultBaseURL is the Groq OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// DefaultModel is the model used for structuring calls.
	DefaultModel = "llama-3.3-70b-versatile"

	// MaxInputChars bounds the captured text sent to the model.
	MaxInputChars = 1500

	// ContextSentinel is used in place of history for a session's first capture.
	ContextSentinel = "first content in this session"
)

const systemPrompt = `You organize captured web text into a knowledge page.
Respond with a single JSON object and nothing else:
{"sectionTitle": "<short title, at most 8 words>", "connections": [{"targetSectionTitle": "<title of an existing section>", "relationshipExplanation": "<at most 10 words>"}]}
Rules:
- sectionTitle must describe the new text, not summarize or alter it.
- connections may only reference section titles from the provided context; return [] when none relate.
- Never rewrite, summarize, or omit any part of the source text.`

// Request carries one structuring call.
type Request struct {
	Text    string
	Context *session.Context
}

// Structurer produces a Result for captured text. Implementations must not
// fail the capture: unusable collaborator output becomes a fallback Result.
type Structurer interface {
	Structure(ctx context.Context, req Request) *Result
}

// Client calls an OpenAI-compatible chat-completions API.
type Client struct {
	api    openai.Client
	model  string
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client) []option.RequestOption

// WithModel overrides the structuring model.
func WithModel(model string) Option {
	return func(c *Client) []option.RequestOption {
		if model != "" {
			c.model = model
		}
		return nil
	}
}

// WithBaseURL points the client at a different OpenAI-compatible endpoint.
func WithBaseURL(baseURL string) Option {
	return func(*Client) []option.RequestOption {
		if baseURL == "" {
			return nil
		}
		return []option.RequestOption{option.WithBaseURL(baseURL)}
	}
}

// New creates a structuring client for the given API key.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		model:  DefaultModel,
		logger: slog.Default(),
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(DefaultBaseURL),
		option.WithMaxRetries(0),
	}
	for _, opt := range opts {
		reqOpts = append(reqOpts, opt(c)...)
	}

	c.api = openai.NewClient(reqOpts...)
	return c
}

// Structure sends the capture to the model under the title/connections-only
// contract. Transport errors, non-2xx statuses, and unparsable output all
// collapse into the deterministic fallback; the capture itself never fails
// here.
func (c *Client) Structure(ctx context.Context, req Request) *Result {
	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildUserPrompt(req)),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		c.logger.Warn("structuring call failed, using fallback", "error", err)
		return Fallback(req.Text)
	}

	if len(completion.Choices) == 0 {
		c.logger.Warn("structuring returned no choices, using fallback")
		return Fallback(req.Text)
	}

	result, ok := parseResult(completion.Choices[0].Message.Content)
	if !ok {
		c.logger.Warn("structuring returned unusable output, using fallback")
		return Fallback(req.Text)
	}
	return result
}

// Fallback builds the deterministic local result: first five words of the
// input as the title, no connections.
func Fallback(text string) *Result {
	return &Result{
		Title:       FallbackTitle(text),
		Connections: []Connection{},
		Fallback:    true,
	}
}

func buildUserPrompt(req Request) string {
	var b strings.Builder

	name := ""
	if req.Context != nil {
		name = req.Context.SessionName
	}
	fmt.Fprintf(&b, "Session: %s\n\n", name)

	b.WriteString("Existing sections:\n")
	if req.Context == nil || len(req.Context.Contents) == 0 {
		b.WriteString(ContextSentinel + "\n")
	} else {
		for _, entry := range req.Context.Contents {
			fmt.Fprintf(&b, "- %s: %s\n", entry.Title, entry.Summary)
		}
	}

	b.WriteString("\nNew text:\n")
	b.WriteString(session.Truncate(req.Text, MaxInputChars))
	return b.String()
}
