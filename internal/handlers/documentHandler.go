package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dealbrief/memoapi/internal/adapter"
	"github.com/dealbrief/memoapi/internal/adapter/utils"
	"github.com/dealbrief/memoapi/internal/api"
	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/domain/docModel"
	"github.com/dealbrief/memoapi/internal/pipeline"
)

const uploadDateLayout = "2006-01-02T15:04:05"

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".rtf":  true,
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "healthy", Service: "memo-analyzer"})
}

// UploadDocumentsHandler godoc
// @Summary      Upload investment memos
// @Description  Receives one or more files via multipart/form-data, stores them, and queues each for processing.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        files  formData  file  true  "PDF, DOCX, TXT or RTF files"
// @Success      200  {object}  api.DocumentListResponse
// @Failure      400  {object}  api.ErrorResponse "Bad file type, oversized file or empty batch"
// @Failure      503  {object}  api.ErrorResponse "Processing queue is full"
// @Router       /documents/upload [post]
func UploadDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logDH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	targetDir, errString := getUploadDirectory()
	if errString != "" {
		logDH.Error("Couldn't get upload directory :", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	const maxFileSize = config.MaxFileSizeMB << 20
	if err := r.ParseMultipartForm(maxFileSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "", "No files provided")
		return
	}
	if len(files) > config.MaxUploadBatchSize {
		WriteErrorResponse(w, http.StatusBadRequest, "", fmt.Sprintf("Too many files, maximum is %d per upload", config.MaxUploadBatchSize))
		return
	}

	//reject the whole batch before writing anything to disk
	for _, header := range files {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !allowedExtensions[ext] {
			WriteErrorResponse(w, http.StatusBadRequest, "", fmt.Sprintf("Unsupported file type: %s", header.Filename))
			return
		}
		if header.Size > maxFileSize {
			WriteErrorResponse(w, http.StatusBadRequest, "", fmt.Sprintf("File exceeds %dMB limit: %s", config.MaxFileSizeMB, header.Filename))
			return
		}
	}

	traceId, _ := r.Context().Value(config.TRACE_ID_KEY).(string)
	uploaded := make([]docModel.Document, 0, len(files))

	for _, header := range files {
		docId := utils.GetNewDocId()
		storedName := fmt.Sprintf("%s_%s", docId, sanitizeFilename(header.Filename))
		fullPath := filepath.Join(targetDir, storedName)

		if errString := saveUploadedFile(header, fullPath); errString != "" {
			WriteErrorResponse(w, http.StatusInternalServerError, docId, errString)
			return
		}

		doc := docModel.Document{
			Id:               docId,
			Filename:         storedName,
			OriginalFilename: header.Filename,
			FileSize:         header.Size,
			Status:           docModel.DocStatusUploaded,
			UploadDate:       time.Now().Format(uploadDateLayout),
		}
		if err := handlerInstance.Documents.SaveDocument(r.Context(), doc); err != nil {
			logDH.Error("Could not persist document record", "doc_id", docId, "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, docId, "Storage error")
			return
		}

		handlerInstance.Progress.Publish(docModel.ProgressEvent{
			DocId:     docId,
			Step:      docModel.StepUpload,
			Status:    docModel.StepCompleted,
			Detail:    fmt.Sprintf("File uploaded: %s", header.Filename),
			Progress:  5,
			Timestamp: time.Now(),
		})

		err := handlerInstance.Pipeline.Enqueue(pipeline.Task{
			DocId:    docId,
			Path:     fullPath,
			Filename: header.Filename,
			TraceId:  traceId,
		})
		if errors.Is(err, pipeline.ErrQueueFull) {
			WriteErrorResponse(w, http.StatusServiceUnavailable, docId, "Processing queue is full, try again later")
			return
		}

		uploaded = append(uploaded, doc)
	}

	logDH.Info("Documents uploaded", "count", len(uploaded))
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentListResponse(uploaded))
}

func saveUploadedFile(header *multipart.FileHeader, fullPath string) string {
	fileReader, err := header.Open()
	if err != nil {
		return "Could not retrieve file"
	}
	defer fileReader.Close()

	destination, err := os.Create(fullPath)
	if err != nil {
		return "Storage error"
	}
	defer destination.Close()

	if _, err := io.Copy(destination, fileReader); err != nil {
		return "Write error"
	}
	return ""
}

// ListDocumentsHandler godoc
// @Summary      List documents
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.DocumentListResponse
// @Router       /documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	docs, err := handlerInstance.Documents.ListDocuments(r.Context())
	if err != nil {
		logDH.Error("Could not list documents", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage error")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentListResponse(docs))
}

// GetDocumentHandler godoc
// @Summary      Get one document
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /documents/{id} [get]
func GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	docId := utils.GetChiURLParam(r, "id")
	doc, found := handlerInstance.Documents.GetDocument(r.Context(), docId)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, docId, "Document not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(doc))
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document
// @Description  Removes the document record, its file, its vectors and any cached analysis results.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.StatusResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /documents/{id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	docId := utils.GetChiURLParam(r, "id")
	doc, found := handlerInstance.Documents.GetDocument(r.Context(), docId)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, docId, "Document not found")
		return
	}

	//vectors and the file are cleaned best effort, the record is authoritative
	if err := handlerInstance.Index.RemoveDocument(r.Context(), docId); err != nil {
		logDH.Warn("Could not remove vectors", "doc_id", docId, "error", err)
	}
	if fullPath, errString := documentFilePath(doc.Filename); errString == "" {
		if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
			logDH.Warn("Could not remove file", "doc_id", docId, "error", err)
		}
	}
	if err := handlerInstance.Results.DeleteResults(r.Context(), docId); err != nil {
		logDH.Warn("Could not remove analysis results", "doc_id", docId, "error", err)
	}
	handlerInstance.Progress.Clear(docId)

	if err := handlerInstance.Documents.DeleteDocument(r.Context(), docId); err != nil {
		logDH.Error("Could not delete document record", "doc_id", docId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, docId, "Storage error")
		return
	}

	logDH.Info("Document deleted", "doc_id", docId)
	writeJsonResponse(w, http.StatusOK, api.StatusResponse{Message: fmt.Sprintf("Document %s deleted successfully", docId)})
}

// ReprocessDocumentHandler godoc
// @Summary      Reprocess a document
// @Description  Clears old vectors and progress, then queues the stored file through the pipeline again.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      202  {object}  api.StatusResponse
// @Failure      404  {object}  api.ErrorResponse
// @Failure      503  {object}  api.ErrorResponse "Processing queue is full"
// @Router       /documents/{id}/reprocess [post]
func ReprocessDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	docId := utils.GetChiURLParam(r, "id")
	doc, found := handlerInstance.Documents.GetDocument(r.Context(), docId)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, docId, "Document not found")
		return
	}

	fullPath, errString := documentFilePath(doc.Filename)
	if errString != "" {
		WriteErrorResponse(w, http.StatusInternalServerError, docId, errString)
		return
	}
	if _, err := os.Stat(fullPath); err != nil {
		WriteErrorResponse(w, http.StatusNotFound, docId, "Document file not found on disk")
		return
	}

	err := handlerInstance.Pipeline.Reprocess(r.Context(), doc, fullPath)
	if errors.Is(err, pipeline.ErrQueueFull) {
		WriteErrorResponse(w, http.StatusServiceUnavailable, docId, "Processing queue is full, try again later")
		return
	}
	if err != nil {
		logDH.Error("Could not queue reprocess", "doc_id", docId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, docId, "Storage error")
		return
	}

	writeJsonResponse(w, http.StatusAccepted, api.StatusResponse{Message: fmt.Sprintf("Document %s queued for reprocessing", docId)})
}

// DocumentProgressStreamHandler godoc
// @Summary      Stream processing progress
// @Description  Server-sent events: replays the progress backlog for the document, then live events until the pipeline reaches a terminal step.
// @Tags         Documents
// @Produce      text/event-stream
// @Param        id   path      string  true  "Document ID"
// @Failure      404  {object}  api.ErrorResponse
// @Router       /documents/{id}/progress/stream [get]
func DocumentProgressStreamHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	docId := utils.GetChiURLParam(r, "id")
	if _, found := handlerInstance.Documents.GetDocument(r.Context(), docId); !found {
		WriteErrorResponse(w, http.StatusNotFound, docId, "Document not found")
		return
	}

	events, cancel := handlerInstance.Progress.Subscribe(docId)
	defer cancel()

	flusher, ok := prepareSSE(w)
	if !ok {
		WriteErrorResponse(w, http.StatusInternalServerError, docId, "Streaming unsupported")
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			if err := writeSSE(w, flusher, event); err != nil {
				logDH.Warn("Progress stream write failed", "doc_id", docId, "error", err)
				return
			}
			if event.Step == docModel.StepDone || event.Step == docModel.StepFailed {
				return
			}
		}
	}
}
