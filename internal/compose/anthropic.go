package compose

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"shortpost/internal/reddit"
)

// implements Composer using Anthropic Claude
type AnthropicComposer struct {
	client anthropic.Client
	model  anthropic.Model
}

func NewAnthropicComposer(apiKey, model string) (*AnthropicComposer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	m := anthropic.Model(model)
	if model == "" {
		m = anthropic.ModelClaudeHaiku4_5
	}

	return &AnthropicComposer{client: client, model: m}, nil
}

const promptTemplate = `Write publish copy for a short vertical video made from this post.
Return only JSON: {"title": "...", "description": "..."}.
The title must be under 90 characters. The description may include a few hashtags.
Keep the credit line intact at the end of the description: %q

Post title: %s
Post body: %s`

func (c *AnthropicComposer) Compose(ctx context.Context, cand *reddit.Candidate) (*Copy, error) {
	prompt := fmt.Sprintf(promptTemplate, cand.Attribution, cand.Title, truncate(cand.Body, 2000))

	message, err := c.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:     c.model,
			MaxTokens: 1024,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(prompt),
				),
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("compose failed: %w", err)
	}

	return parseResponse(message, cand)
}

func parseResponse(message *anthropic.Message, cand *reddit.Candidate) (*Copy, error) {
	if message == nil || len(message.Content) == 0 {
		return nil, fmt.Errorf("empty response from Anthropic")
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	responseText = cleanJSONResponse(responseText)

	var copyOut Copy
	if err := json.Unmarshal([]byte(responseText), &copyOut); err != nil {
		return nil, fmt.Errorf("failed to parse compose response: %w", err)
	}
	if copyOut.Title == "" {
		copyOut.Title = cand.Title
	}
	if copyOut.Description == "" {
		copyOut.Description = cand.Title
	}

	return &copyOut, nil
}

// strips markdown code fences the model sometimes wraps JSON in
func cleanJSONResponse(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
