package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/domain/docModel"
	"github.com/dealbrief/memoapi/internal/rag/vectorDB"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

var logger *logger_i.Logger
var quadrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)
var collectionName = config.MemoCollectionName

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQuadrantClient(ctx context.Context) *ClientHolder {

	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient()
		if res != nil {
			quadrantInstance = res
			go closeQdrant(ctx, quadrantInstance)
		}
	})

	if quadrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: quadrantInstance,
	}
}

func newClient() *qdrant.Client {

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	err = createCollection(context.Background(), client, collectionName)
	if err != nil {
		logger.Error("could not create collection: ", "collectionName", collectionName, "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) EnsureCollection(ctx context.Context, collectionName string) error {
	return createCollection(ctx, db.QObj, collectionName)
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, collectionName string, docId string, docName string, chunks []docModel.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))

	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			// Qdrant only takes UUID point ids, so the logical chunk id is
			// hashed deterministically and kept verbatim in the payload.
			Id: qdrant.NewID(pointId(docId, chunk.Index)),

			Vectors: qdrant.NewVectors(vectors[i]...),

			Payload: qdrant.NewValueMap(map[string]any{
				"content":     chunk.Text,
				"chunk_id":    ChunkKey(docId, chunk.Index),
				"doc_id":      docId,
				"doc_name":    docName,
				"page_number": chunk.PageNumber,
				"chunk_index": chunk.Index,
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})

	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}

	return nil
}

func (db *ClientHolder) Query(ctx context.Context, vector []float32, k int, docIds []string) ([]vectorDB.Match, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	var filter *qdrant.Filter
	if len(docIds) > 0 {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatchKeywords("doc_id", docIds...),
			},
		}
	}

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	matches := make([]vectorDB.Match, 0, len(result))
	for _, hit := range result {
		payload := hit.Payload
		matches = append(matches, vectorDB.Match{
			Text:       payload["content"].GetStringValue(),
			DocId:      payload["doc_id"].GetStringValue(),
			DocName:    payload["doc_name"].GetStringValue(),
			PageNumber: int(payload["page_number"].GetIntegerValue()),
			ChunkIndex: int(payload["chunk_index"].GetIntegerValue()),
			// cosine similarity score -> distance, so closest-first ordering
			// survives the conversion
			Distance: 1 - hit.Score,
		})
	}

	loggr.Debug("Vector query", "matches", len(matches))
	return matches, nil
}

func (db *ClientHolder) DeleteByDoc(ctx context.Context, docId string) error {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("doc_id", docId),
			},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		loggr.Error("Error deleting document vectors", "doc_id", docId, "error:", err)
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Count(ctx context.Context) (uint64, error) {
	return db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: collectionName,
	})
}

// DocNames scrolls payloads for the distinct document names currently
// indexed, capped at limit points scanned.
func (db *ClientHolder) DocNames(ctx context.Context, limit int) ([]string, error) {
	points, err := db.QObj.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: collectionName,
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayloadInclude("doc_name"),
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	for _, p := range points {
		name := p.Payload["doc_name"].GetStringValue()
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

// ChunkKey forms the globally unique logical identifier for a chunk.
func ChunkKey(docId string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", docId, index)
}

func pointId(docId string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(ChunkKey(docId, index))).String()
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	return err
}
