package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ecovoyage/ecovoyage-backend/logger"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

const generationTimeout = 60 * time.Second

var errEmptyCompletion = errors.New("text generation returned empty completion")

// TextGenerator produces free-form text from a prompt. Implementations must
// return an error rather than panic when the backing model is unreachable.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIGenerator implements TextGenerator over the OpenAI chat completions
// endpoint.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	log    *zap.SugaredLogger
}

func NewOpenAIGenerator(apiKey, model string, opts ...option.RequestOption) *OpenAIGenerator {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)
	return &OpenAIGenerator{
		client: &client,
		model:  model,
		log:    logger.GetLogger(),
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a sustainable travel planner. Keep answers practical and grounded in the context you are given."),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		g.log.Warnw("Text generation failed", "model", g.model, "error", err)
		return "", err
	}
	if len(completion.Choices) == 0 {
		g.log.Warnw("Text generation returned no choices", "model", g.model)
		return "", errEmptyCompletion
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", errEmptyCompletion
	}
	return text, nil
}
