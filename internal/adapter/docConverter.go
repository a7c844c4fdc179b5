package adapter

import (
	"github.com/dealbrief/memoapi/internal/api"
	"github.com/dealbrief/memoapi/internal/domain/docModel"
	"github.com/dealbrief/memoapi/internal/domain/qaModel"
)

func ToDocumentResponse(doc docModel.Document) api.DocumentResponse {
	return api.DocumentResponse{
		Id:               doc.Id,
		Filename:         doc.Filename,
		OriginalFilename: doc.OriginalFilename,
		FileSize:         doc.FileSize,
		PageCount:        doc.PageCount,
		Status:           string(doc.Status),
		UploadDate:       doc.UploadDate,
		ErrorMessage:     doc.ErrorMessage,
	}
}

func ToDocumentListResponse(docs []docModel.Document) api.DocumentListResponse {
	out := make([]api.DocumentResponse, len(docs))
	for i, doc := range docs {
		out[i] = ToDocumentResponse(doc)
	}
	return api.DocumentListResponse{Documents: out, Total: len(out)}
}

func ToSourceResponses(sources []qaModel.Source) []api.SourceResponse {
	out := make([]api.SourceResponse, len(sources))
	for i, s := range sources {
		out[i] = api.SourceResponse{DocName: s.DocName, Page: s.Page, Snippet: s.Snippet}
	}
	return out
}

func ToQAResponse(result qaModel.QAResult) api.QAResponse {
	return api.QAResponse{
		Question: result.Question,
		Answer:   result.Answer,
		Sources:  ToSourceResponses(result.Sources),
	}
}

func ToHistoryResponses(items []qaModel.HistoryItem) []api.HistoryItemResponse {
	out := make([]api.HistoryItemResponse, len(items))
	for i, item := range items {
		out[i] = api.HistoryItemResponse{
			Id:       item.Id,
			Question: item.Question,
			Answer:   item.Answer,
			Sources:  ToSourceResponses(item.Sources),
			AskedAt:  item.AskedAt,
		}
	}
	return out
}

func ToSessionResponse(session qaModel.ChatSession) api.SessionResponse {
	messages := make([]api.MessageResponse, len(session.Messages))
	for i, m := range session.Messages {
		messages[i] = api.MessageResponse{Role: m.Role, Content: m.Content}
	}
	return api.SessionResponse{
		Id:        session.Id,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		Messages:  messages,
	}
}

func ToSessionSummaries(sessions []qaModel.ChatSession) []api.SessionSummaryResponse {
	out := make([]api.SessionSummaryResponse, len(sessions))
	for i, s := range sessions {
		out[i] = api.SessionSummaryResponse{
			Id:           s.Id,
			Title:        s.Title,
			CreatedAt:    s.CreatedAt,
			UpdatedAt:    s.UpdatedAt,
			MessageCount: len(s.Messages),
		}
	}
	return out
}

func BadRequest(id string, message string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Code:    code,
		Message: message,
		Id:      id,
	}
}
