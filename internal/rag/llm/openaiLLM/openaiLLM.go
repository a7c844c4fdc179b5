package openaiLLM

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/customHttpClient"
	"github.com/dealbrief/memoapi/internal/rag/llm"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

type llmClient struct {
	oa        *openai.Client
	modelName string
}

var logger *logger_i.Logger
var openaiClient *llmClient
var once sync.Once

func GetOpenAIClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		newOpenAIClient(ctx, modelName, apikey)
	})

	if openaiClient == nil {
		return nil
	}
	return &llmClient{oa: openaiClient.oa, modelName: openaiClient.modelName}
}

func newOpenAIClient(ctx context.Context, modelName string, apikey string) {
	if apikey == "" {
		logger.Error("OpenAI API key is empty")
		return
	}

	c := openai.NewClient(option.WithAPIKey(apikey), option.WithHTTPClient(customHttpClient.GetPooledClient()))
	openaiClient = &llmClient{oa: &c, modelName: modelName}
	logger.Info("OpenAI client created", "model", modelName)
	go closeClient(ctx, openaiClient)
}

func (c *llmClient) Complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(c.modelName),
		Temperature: openai.Float(config.LLMTemperature),
		MaxTokens:   openai.Int(config.LLMMaxTokens),
	}
	if jsonMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: "json_object",
			},
		}
	}

	resp, err := c.oa.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Error("Completion call failed", "error", err.Error())
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *llmClient) CompleteStream(ctx context.Context, prompt string, handler llm.TokenHandler) error {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	stream := c.oa.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(c.modelName),
		Temperature: openai.Float(config.LLMStreamTemperature),
		MaxTokens:   openai.Int(config.LLMMaxTokens),
	})
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		token := chunk.Choices[0].Delta.Content
		if token == "" {
			continue
		}
		if err := handler(token); err != nil {
			return err
		}
	}

	if err := stream.Err(); err != nil {
		log.Error("Streaming completion failed", "error", err.Error())
		return fmt.Errorf("streaming completion failed: %w", err)
	}
	return nil
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing OpenAI client")
	llm.oa = nil
	llm.modelName = ""
}
