package gemini

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/customHttpClient"
	"github.com/dealbrief/memoapi/internal/rag/llm"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey, HTTPClient: customHttpClient.GetPooledClient()})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{client: c, modelName: modelName}
		logger.Info("Gemini client created", "model", modelName)
		go closeClient(ctx, geminiClient)
	}
}

func (c *llmClient) Complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	contentConfig := &genai.GenerateContentConfig{}
	if jsonMode {
		contentConfig.ResponseMIMEType = "application/json"
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(prompt),
		contentConfig,
	)
	if err != nil {
		log.Error("Completion call failed", "error", err.Error())
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return result.Text(), nil
}

func (c *llmClient) CompleteStream(ctx context.Context, prompt string, handler llm.TokenHandler) error {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	for result, err := range c.client.Models.GenerateContentStream(
		ctx,
		c.modelName,
		genai.Text(prompt),
		&genai.GenerateContentConfig{},
	) {
		if err != nil {
			log.Error("Streaming completion failed", "error", err.Error())
			return fmt.Errorf("streaming completion failed: %w", err)
		}
		token := result.Text()
		if token == "" {
			continue
		}
		if handlerErr := handler(token); handlerErr != nil {
			return handlerErr
		}
	}
	return nil
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
	llm.modelName = ""
}
