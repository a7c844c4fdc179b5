package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//chunking - word budget per chunk and word overlap between neighbours
	ChunkSize    = 500
	ChunkOverlap = 100

	//retrieval
	RetrievalTopK  = 7
	SnippetLength  = 150
	NoDocsAnswer   = "No relevant documents found. Please upload documents first."
	ContextJoiner  = "\n---\n"
	MaxPromptChars = 100000 //full-text cap for extraction and FAQ prompts

	//vectorDB
	EmbeddingOutputDimensionality int32 = 1536
	MemoCollectionName                  = "memo-chunks"
	QdrantHost                          = ""
	QdrantGrpcPort                      = 6334
	QdrantUseTLS                        = false
	QdrantPoolSize                      = 1

	//embedding + llm defaults (openai is the primary provider)
	OpenAIEmbeddingModel = "text-embedding-3-small"
	OpenAILLMModel       = "gpt-4-turbo-preview"
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"
	EmbeddingBatchSize   = 2048 //provider maximum items per call
	LLMMaxTokens         = 4096
	LLMTemperature       = 0.1
	LLMStreamTemperature = 0.2

	//uploads
	MaxFileSizeMB      = 20
	MaxUploadBatchSize = 10

	//pipeline - one worker by design: providers are rate limited and the
	//document store must never interleave two runs
	PipelineQueueSize = 100

	//progress stream
	ProgressIdleTimeout = 5 * time.Minute
	ProgressSubBuffer   = 256

	//qa history
	QAHistoryWindow = 50
	SessionTitleCap = 50

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 0 * time.Second //streaming endpoints hold the connection open
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	//outbound connection pooling - every provider call reuses connections
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisPassword = ""

	//redis has 16 DB we can use
	RedisDocumentStore = 0
	RedisResultStore   = 1
	RedisHistoryStore  = 2

	//documents and analysis results persist until explicit delete
	RedisDocumentTTL = 0 * time.Second
	RedisResultTTL   = 0 * time.Second
	RedisHistoryTTL  = 24 * 7 * time.Hour

	UploadDirName = "uploads"

	NoAuthBypass = true //flip for deployments that front this with a gateway
	AuthToken    = ""
)

// LoadEnv pulls a .env file into the process environment when one exists.
// Missing files are fine - deployments set real environment variables.
func LoadEnv() {
	_ = godotenv.Load()
}

// Env reads a variable with a fallback for local runs.
func Env(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
