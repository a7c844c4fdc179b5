package openaiEmbedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/customHttpClient"
	"github.com/dealbrief/memoapi/internal/rag/embedding"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	oa    *openai.Client
	model string
}

func GetOpenAIEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("openai_embedding")
		newOpenAIEmbedder(ctx, modelName, apikey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{oa: embeddingClient.oa, model: embeddingClient.model}
}

func newOpenAIEmbedder(ctx context.Context, modelName string, apikey string) {
	if apikey == "" {
		logger.Error("OpenAI API key is empty")
		return
	}

	c := openai.NewClient(option.WithAPIKey(apikey), option.WithHTTPClient(customHttpClient.GetPooledClient()))
	embeddingClient = &client{
		oa:    &c,
		model: modelName,
	}
	logger.Debug("OpenAI Embedding model name: " + modelName)
	logger.Info("OpenAI Embedding client created")
	go closeClient(ctx, embeddingClient)
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing OpenAI Embedding client")
	embeddingClient.oa = nil
	embeddingClient.model = ""
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	resp, err := c.oa.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(query),
		},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		log.Error("Error getting Embedding from OpenAI", "error", err.Error())
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return toFloat32(resp.Data[0].Embedding), nil
}

// BatchEmbedding sends texts in groups of config.EmbeddingBatchSize (the
// provider maximum per call) and concatenates the vectors in order.
func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	var results [][]float32
	for start := 0; start < len(chunks); start += config.EmbeddingBatchSize {
		end := start + config.EmbeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		log.Debug("Starting embedding call", "batch start", start, "batch size", end-start)
		resp, err := c.oa.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: chunks[start:end],
			},
			Model: openai.EmbeddingModel(c.model),
		})
		if err != nil {
			log.Error("Error getting batch Embeddings from OpenAI", "error", err.Error())
			return nil, fmt.Errorf("embedding batch %d-%d failed: %w", start, end, err)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("embedding batch %d-%d: got %d vectors for %d texts", start, end, len(resp.Data), end-start)
		}

		for _, item := range resp.Data {
			results = append(results, toFloat32(item.Embedding))
		}
	}
	return results, nil
}

// toFloat32 narrows the API's float64 vectors to the storage type.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
