package docModel

import (
	"context"
	"time"
)

type DocStatus string
type StepStatus string

const (
	DocStatusUploaded   DocStatus = "uploaded"
	DocStatusProcessing DocStatus = "processing"
	DocStatusProcessed  DocStatus = "processed"
	DocStatusError      DocStatus = "error"

	StepStarted   StepStatus = "started"
	StepCompleted StepStatus = "completed"
	StepError     StepStatus = "error"

	//pipeline step names, in run order
	StepUpload       = "upload"
	StepExtraction   = "text_extraction"
	StepEmbedding    = "embedding"
	StepAIExtraction = "ai_extraction"
	StepDone         = "done"
	StepFailed       = "error"
)

type DocType string

const (
	PDF  DocType = "PDF"
	Flat DocType = "FLAT" //docx, txt, rtf - no page boundaries
	ERR  DocType = "ERROR"
)

// Document is the persisted metadata record for one uploaded memo.
// Only the pipeline mutates it after upload.
type Document struct {
	Id               string    `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	FileSize         int64     `json:"file_size"`
	PageCount        int       `json:"page_count"`
	Status           DocStatus `json:"status"`
	UploadDate       string    `json:"upload_date"`
	ErrorMessage     string    `json:"error_message,omitempty"`
}

// Page is one extracted page, 1-indexed, immutable once produced.
type Page struct {
	Number int    `json:"page_number"`
	Text   string `json:"text"`
}

// Chunk is the retrieval unit: a sentence-aligned span attributed to the
// page its content began on. Index is dense per document starting at 0.
type Chunk struct {
	Text       string `json:"text"`
	PageNumber int    `json:"page_number"`
	Index      int    `json:"index"`
}

// ProgressEvent is emitted at every pipeline stage boundary.
type ProgressEvent struct {
	DocId     string     `json:"doc_id"`
	Step      string     `json:"step"`
	Status    StepStatus `json:"status"`
	Detail    string     `json:"detail"`
	Progress  int        `json:"progress"`
	Timestamp time.Time  `json:"timestamp"`
}

type DocumentStore interface {
	GetDocument(ctx context.Context, docId string) (Document, bool)
	ListDocuments(ctx context.Context) ([]Document, error)
	SaveDocument(ctx context.Context, doc Document) error
	UpdateStatus(ctx context.Context, docId string, status DocStatus, errorMessage string) error
	UpdatePageCount(ctx context.Context, docId string, pages int) error
	DeleteDocument(ctx context.Context, docId string) error
}
