package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/dealbrief/memoapi/internal/adapter"
	"github.com/dealbrief/memoapi/internal/adapter/utils"
	"github.com/dealbrief/memoapi/internal/api"
	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/domain/qaModel"
)

// AskHandler godoc
// @Summary      Ask a question over the indexed documents
// @Tags         QA
// @Accept       json
// @Produce      json
// @Param        request  body      api.AskRequest  true  "Question and optional document ID filter"
// @Success      200      {object}  api.QAResponse
// @Failure      400      {object}  api.ErrorResponse
// @Router       /qa/ask [post]
func AskHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logQH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	requestData, ok := decodeAskRequest(w, r)
	if !ok {
		return
	}

	result, err := handlerInstance.RAG.Answer(r.Context(), requestData.Question, requestData.DocIds)
	if err != nil {
		logQH.Error("Answer failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not generate an answer")
		return
	}

	appendHistory(r, result)
	writeJsonResponse(w, http.StatusOK, adapter.ToQAResponse(result))
}

// AskStreamHandler godoc
// @Summary      Ask a question, streamed
// @Description  Server-sent events: answer token events, then one sources event, then a terminal done event.
// @Tags         QA
// @Accept       json
// @Produce      text/event-stream
// @Param        request  body  api.AskRequest  true  "Question and optional document ID filter"
// @Failure      400      {object}  api.ErrorResponse
// @Router       /qa/ask/stream [post]
func AskStreamHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logQH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	requestData, ok := decodeAskRequest(w, r)
	if !ok {
		return
	}

	flusher, ok := prepareSSE(w)
	if !ok {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Streaming unsupported")
		return
	}

	//mirror the completed answer into history once the stream finishes
	answer := ""
	var sources []qaModel.Source

	err := handlerInstance.RAG.AnswerStream(r.Context(), requestData.Question, requestData.DocIds, func(event qaModel.StreamEvent) error {
		switch event.Type {
		case qaModel.StreamEventAnswer:
			if token, isString := event.Data.(string); isString {
				answer += token
			}
		case qaModel.StreamEventSources:
			if s, isSources := event.Data.([]qaModel.Source); isSources {
				sources = s
			}
		}
		return writeSSE(w, flusher, event)
	})
	if err != nil {
		logQH.Error("Answer stream failed", "error", err)
		//headers are gone, the best we can do is surface the failure in-band
		_ = writeSSE(w, flusher, qaModel.StreamEvent{Type: "error", Data: "Could not generate an answer"})
		return
	}

	appendHistory(r, qaModel.QAResult{Question: requestData.Question, Answer: answer, Sources: sources})
}

// QAHistoryHandler godoc
// @Summary      Recent question and answer history
// @Tags         QA
// @Produce      json
// @Success      200  {array}  api.HistoryItemResponse
// @Router       /qa/history [get]
func QAHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	items, err := handlerInstance.History.RecentHistory(r.Context(), config.QAHistoryWindow)
	if err != nil {
		logQH.Error("Could not read history", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage error")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToHistoryResponses(items))
}

// SuggestedQuestionsHandler godoc
// @Summary      Starter questions derived from the uploaded documents
// @Tags         QA
// @Produce      json
// @Success      200  {object}  api.SuggestedQuestionsResponse
// @Router       /qa/suggested-questions [get]
func SuggestedQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	questions := handlerInstance.RAG.SuggestedQuestions(r.Context())
	writeJsonResponse(w, http.StatusOK, api.SuggestedQuestionsResponse{Questions: questions})
}

// sessions ---------------------

// CreateSessionHandler godoc
// @Summary      Create a chat session
// @Tags         Sessions
// @Produce      json
// @Success      200  {object}  api.SessionResponse
// @Router       /qa/sessions [post]
func CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	now := time.Now()
	session := qaModel.ChatSession{
		Id:        utils.GetNewUUID(),
		Title:     "New Chat",
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []qaModel.ChatMessage{},
	}
	if err := handlerInstance.History.CreateSession(r.Context(), session); err != nil {
		logQH.Error("Could not create session", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage error")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSessionResponse(session))
}

// ListSessionsHandler godoc
// @Summary      List chat sessions, newest first
// @Tags         Sessions
// @Produce      json
// @Success      200  {array}  api.SessionSummaryResponse
// @Router       /qa/sessions [get]
func ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	sessions, err := handlerInstance.History.ListSessions(r.Context())
	if err != nil {
		logQH.Error("Could not list sessions", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage error")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSessionSummaries(sessions))
}

// GetSessionHandler godoc
// @Summary      Get one chat session with its messages
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  api.SessionResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /qa/sessions/{id} [get]
func GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	sessionId := utils.GetChiURLParam(r, "id")
	session, found := handlerInstance.History.GetSession(r.Context(), sessionId)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, sessionId, "Session not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSessionResponse(session))
}

// DeleteSessionHandler godoc
// @Summary      Delete a chat session
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  api.StatusResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /qa/sessions/{id} [delete]
func DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	sessionId := utils.GetChiURLParam(r, "id")
	if _, found := handlerInstance.History.GetSession(r.Context(), sessionId); !found {
		WriteErrorResponse(w, http.StatusNotFound, sessionId, "Session not found")
		return
	}
	if err := handlerInstance.History.DeleteSession(r.Context(), sessionId); err != nil {
		logQH.Error("Could not delete session", "session_id", sessionId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, sessionId, "Storage error")
		return
	}
	writeJsonResponse(w, http.StatusOK, api.StatusResponse{Message: "Session deleted"})
}

// AddSessionMessageHandler godoc
// @Summary      Append a message to a chat session
// @Description  The first user message also becomes the session title, truncated to 50 characters.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "Session ID"
// @Param        request  body  api.SessionMessageRequest  true  "Message role and content"
// @Success      200  {object}  api.SessionResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /qa/sessions/{id}/messages [post]
func AddSessionMessageHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	sessionId := utils.GetChiURLParam(r, "id")

	var requestData api.SessionMessageRequest
	defer closeBody(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.Content == "" {
		WriteErrorResponse(w, http.StatusBadRequest, sessionId, "Bad Request")
		return
	}
	if requestData.Role != "user" && requestData.Role != "assistant" {
		WriteErrorResponse(w, http.StatusBadRequest, sessionId, "Role must be user or assistant")
		return
	}

	session, found := handlerInstance.History.GetSession(r.Context(), sessionId)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, sessionId, "Session not found")
		return
	}

	session.Messages = append(session.Messages, qaModel.ChatMessage{Role: requestData.Role, Content: requestData.Content})
	session.UpdatedAt = time.Now()
	if requestData.Role == "user" && session.Title == "New Chat" {
		session.Title = deriveSessionTitle(requestData.Content)
	}

	if err := handlerInstance.History.SaveSession(r.Context(), session); err != nil {
		logQH.Error("Could not save session", "session_id", sessionId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, sessionId, "Storage error")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSessionResponse(session))
}

// private helpers ---------------------

func decodeAskRequest(w http.ResponseWriter, r *http.Request) (api.AskRequest, bool) {
	var requestData api.AskRequest
	defer closeBody(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.Question == "" {
		logQH.Warn("Bad ask request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "Question is required")
		return api.AskRequest{}, false
	}
	return requestData, true
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		logQH.Error("Couldn't close the request body reader :", err)
	}
}

func appendHistory(r *http.Request, result qaModel.QAResult) {
	item := qaModel.HistoryItem{
		Id:       utils.GetNewUUID(),
		Question: result.Question,
		Answer:   result.Answer,
		Sources:  result.Sources,
		AskedAt:  time.Now(),
	}
	if err := handlerInstance.History.AppendHistory(r.Context(), item); err != nil {
		//history is best effort, the answer was already produced
		logQH.Warn("Could not append history", "error", err)
	}
}

func deriveSessionTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= config.SessionTitleCap {
		return content
	}
	return string(runes[:config.SessionTitleCap]) + "..."
}
