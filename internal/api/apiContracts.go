package api

import (
	"time"

	"github.com/dealbrief/memoapi/internal/domain/analysisModel"
)

type DocumentResponse struct {
	Id               string `json:"id" example:"a1b2c3d4"`
	Filename         string `json:"filename" example:"a1b2c3d4_memo.pdf"`
	OriginalFilename string `json:"original_filename" example:"memo.pdf"`
	FileSize         int64  `json:"file_size" example:"204800"`
	PageCount        int    `json:"page_count" example:"12"`
	Status           string `json:"status" example:"processed"`
	UploadDate       string `json:"upload_date" example:"2026-08-30T10:00:00"`
	ErrorMessage     string `json:"error_message,omitempty"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int                `json:"total"`
}

type SourceResponse struct {
	DocName string `json:"doc_name" example:"memo.pdf"`
	Page    int    `json:"page" example:"3"`
	Snippet string `json:"snippet"`
}

type QAResponse struct {
	Question string           `json:"question"`
	Answer   string           `json:"answer"`
	Sources  []SourceResponse `json:"sources"`
}

type HistoryItemResponse struct {
	Id       string           `json:"id"`
	Question string           `json:"question"`
	Answer   string           `json:"answer"`
	Sources  []SourceResponse `json:"sources"`
	AskedAt  time.Time        `json:"asked_at"`
}

type SuggestedQuestionsResponse struct {
	Questions []string `json:"questions"`
}

type SessionResponse struct {
	Id        string            `json:"id"`
	Title     string            `json:"title"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Messages  []MessageResponse `json:"messages"`
}

type SessionSummaryResponse struct {
	Id           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

type MessageResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ExtractionListResponse struct {
	Results []analysisModel.ExtractionResult `json:"results"`
	Total   int                              `json:"total"`
}

// ComparisonResponse carries the completed extractions for every processed
// document, ready to line up side by side.
type ComparisonResponse struct {
	Documents []analysisModel.ExtractionResult `json:"documents"`
	Total     int                              `json:"total"`
}

type StatusResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Service string `json:"service" example:"memo-analyzer"`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"404"`
	Message string `json:"message" example:"Document not found"`
	Id      string `json:"id,omitempty"`
}

// requests---------------------

type AskRequest struct {
	Question string   `json:"question" validate:"required"`
	DocIds   []string `json:"doc_ids,omitempty"`
}

type SessionMessageRequest struct {
	Role    string `json:"role" validate:"required"`
	Content string `json:"content" validate:"required"`
}
