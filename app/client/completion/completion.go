package completion

import (
	"agencychat/app/config"
	"agencychat/app/service/conversation"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/sashabaranov/go-openai"
)

// Client generates replies through an OpenAI compatible chat completion API.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	stream      bool
}

func New(cfg config.LLM) *Client {
	clientConfig := openai.DefaultConfig(cfg.Token)

	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
	}

	return &Client{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		stream:      cfg.Stream,
	}
}

func (c *Client) Generate(ctx context.Context, prompt string) (*conversation.Envelope, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxCompletionTokens: c.maxTokens,
		Temperature:         c.temperature,
	}

	if c.stream {
		return c.generateStream(ctx, req)
	}

	aiResponse, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(aiResponse.Choices) == 0 {
		return nil, fmt.Errorf("no chat completion found")
	}

	outputs := pie.Map(aiResponse.Choices, func(choice openai.ChatCompletionChoice) conversation.Value {
		return conversation.Text(choice.Message.Content)
	})

	return &conversation.Envelope{Outputs: outputs}, nil
}

// generateStream opens the stream and defers reading it to the extractor.
func (c *Client) generateStream(ctx context.Context, req openai.ChatCompletionRequest) (*conversation.Envelope, error) {
	req.Stream = true

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion stream: %w", err)
	}

	read := func(ctx context.Context) (string, error) {
		defer stream.Close()

		var builder strings.Builder

		for {
			if err := ctx.Err(); err != nil {
				return "", err
			}

			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return builder.String(), nil
			}
			if err != nil {
				return "", fmt.Errorf("stream.Recv: %w", err)
			}

			for _, choice := range chunk.Choices {
				if choice.Index == 0 {
					builder.WriteString(choice.Delta.Content)
				}
			}
		}
	}

	return &conversation.Envelope{Response: conversation.Thunk(read)}, nil
}
