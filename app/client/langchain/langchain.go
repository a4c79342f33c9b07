package langchain

import (
	"agencychat/app/config"
	"agencychat/app/service/conversation"
	"context"
	"fmt"
	"net/http"

	"github.com/elliotchance/pie/v2"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Client generates replies through a langchaingo model.
type Client struct {
	model       llms.Model
	temperature float64
	maxTokens   int
}

func New(cfg config.LLM) (*Client, error) {
	model, err := openai.New(
		openai.WithToken(cfg.Token),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		openai.WithCallback(LogCallbackHandler{}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create langchain model: %w", err)
	}

	return NewWithModel(model, cfg), nil
}

func NewWithModel(model llms.Model, cfg config.LLM) *Client {
	return &Client{
		model:       model,
		temperature: float64(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
	}
}

func (c *Client) Generate(ctx context.Context, prompt string) (*conversation.Envelope, error) {
	resp, err := c.model.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		},
		llms.WithTemperature(c.temperature),
		llms.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no content choices found")
	}

	outputs := pie.Map(resp.Choices, func(choice *llms.ContentChoice) conversation.Value {
		if choice == nil {
			return nil
		}

		return conversation.Text(choice.Content)
	})

	return &conversation.Envelope{Outputs: outputs}, nil
}
