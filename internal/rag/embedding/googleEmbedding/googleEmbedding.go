package googleEmbedding

import (
	"context"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/customHttpClient"
	"github.com/dealbrief/memoapi/internal/rag/embedding"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

// genai caps EmbedContent at 100 items per request, well under the
// config.EmbeddingBatchSize ceiling the openai provider uses.
const genaiBatchLimit = 100

type client struct {
	genAi *genai.Client
	model string
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey, HTTPClient: customHttpClient.GetPooledClient()})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
	}
	if c != nil {
		embeddingClient = &client{
			genAi: c,
			model: modelName,
		}
		logger.Debug("Google Embedding model name: " + modelName)
		logger.Info("Google Embedding client created")
		go closeClient(ctx, embeddingClient)
	}
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
	embeddingClient.genAi = nil
	embeddingClient.model = ""
}

func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := c.doCall(ctx, genai.Text(query))
	if err != nil {
		log.Error("Error getting Embedding from Google", "error", err.Error())
		return nil, err
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	var results [][]float32
	for start := 0; start < len(chunks); start += genaiBatchLimit {
		end := start + genaiBatchLimit
		if end > len(chunks) {
			end = len(chunks)
		}

		res, err := c.doCall(ctx, getContent(chunks[start:end]))
		if err != nil || res == nil {
			if doRetry(err, log) {
				log.Debug("Retrying in 5 seconds")
				time.Sleep(5 * time.Second)
				res, err = c.doCall(ctx, getContent(chunks[start:end]))
			}
			if err != nil || res == nil {
				log.Error("Error getting Embeddings from Google", "error", err)
				return nil, err
			}
		}

		for _, r := range res.Embeddings {
			results = append(results, r.Values)
		}
	}
	return results, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	result, err := c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: "RETRIEVAL_DOCUMENT"})
	return result, err
}
