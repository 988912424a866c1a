package llm

import (
	"context"
	"errors"
	"fmt"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

const (
	xaiDefaultBaseURL = "https://api.x.ai/v1"
	xaiTemperature    = 0.85
	xaiMaxTokens      = 4000
)

// XAI generates transcripts with xAI's OpenAI-compatible chat completions API.
type XAI struct {
	client oai.Client
	model  string
}

func NewXAI(apiKey, model string, opts ...Option) (*XAI, error) {
	if apiKey == "" {
		return nil, errors.New("xai: apiKey must not be empty")
	}
	if model == "" {
		return nil, errors.New("xai: model must not be empty")
	}
	o := &options{baseURL: xaiDefaultBaseURL}
	for _, opt := range opts {
		opt(o)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(o.baseURL),
		// Retries happen in Retrying so they are logged and counted once.
		option.WithMaxRetries(0),
	}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.httpClient))
	}
	return &XAI{client: oai.NewClient(reqOpts...), model: model}, nil
}

func (x *XAI) Name() string { return "xai" }

func (x *XAI) Generate(ctx context.Context, req Request) (string, error) {
	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(x.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(req.System),
			oai.UserMessage("THE PITCH: " + req.Pitch),
		},
		Temperature:     param.NewOpt(xaiTemperature),
		MaxTokens:       param.NewOpt(int64(xaiMaxTokens)),
		ReasoningEffort: shared.ReasoningEffortHigh,
	}

	resp, err := x.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("xai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
