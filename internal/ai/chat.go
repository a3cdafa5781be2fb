package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/Bochyn/Image-to-video/internal/config"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// ChatClient runs single-shot chat completions against an OpenAI-compatible
// endpoint with one fixed TextModel configuration.
type ChatClient struct {
	client openai.Client
	model  config.TextModel
}

func NewChatClient(p config.TextProvider, m config.TextModel) *ChatClient {
	// No retries: failures surface to the caller.
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if p.APIKey != "" {
		opts = append(opts, option.WithAPIKey(p.APIKey))
	}
	if p.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.BaseURL))
	}
	return &ChatClient{client: openai.NewClient(opts...), model: m}
}

// Complete sends prompt, and any images, and returns the trimmed reply.
//
// Without images the system prompt travels as a system message. With images
// it leads the user message as a text part, which is what vision models
// follow most reliably.
func (c *ChatClient) Complete(ctx context.Context, prompt string, images ...Image) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model.Model),
		Messages: c.messages(prompt, images),
	}
	if c.model.Temperature > 0 {
		params.Temperature = openai.Float(c.model.Temperature)
	}
	if c.model.TopP > 0 {
		params.TopP = openai.Float(c.model.TopP)
	}
	if c.model.MaxTokens > 0 {
		params.MaxTokens = openai.Int(c.model.MaxTokens)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned by model")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("no text returned by model")
	}
	return text, nil
}

func (c *ChatClient) messages(prompt string, images []Image) []openai.ChatCompletionMessageParamUnion {
	system := strings.TrimSpace(c.model.SystemPrompt)
	prompt = strings.TrimSpace(prompt)

	if len(images) == 0 {
		var msgs []openai.ChatCompletionMessageParamUnion
		if system != "" {
			msgs = append(msgs, openai.SystemMessage(system))
		}
		return append(msgs, openai.UserMessage(prompt))
	}

	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, 2+len(images))
	if system != "" {
		parts = append(parts, openai.TextContentPart(system))
	}
	if prompt != "" {
		parts = append(parts, openai.TextContentPart(prompt))
	}
	for _, img := range images {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: img.DataURL(),
		}))
	}
	return []openai.ChatCompletionMessageParamUnion{openai.UserMessage(parts)}
}
