package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dealbrief/memoapi/internal/adapter"
	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/metrics"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logDH.Error("Error encoding response: %v", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logDH.Warn("context error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		logDH.Warn("context cancelled")
		return false
	default:
		return true

	}
}

func getUploadDirectory() (string, string) {
	root, err := os.Getwd()
	if err != nil {
		return "", "Storage Error"
	}

	targetDir := filepath.Join(root, config.UploadDirName)
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}

// documentFilePath resolves the on-disk location of a stored document file.
func documentFilePath(storedFilename string) (string, string) {
	dir, errString := getUploadDirectory()
	if errString != "" {
		return "", errString
	}
	return filepath.Join(dir, storedFilename), ""
}

// sanitizeFilename keeps the base name only and flattens path separators,
// so a crafted filename can't escape the upload directory.
func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, "..", "_")
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "document"
	}
	return base
}

// sse helpers ---------------------

func prepareSSE(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		//the metrics recorder wraps the real writer and hides Flush
		if recorder, isRecorder := w.(*metrics.HttpStatusRecorder); isRecorder {
			flusher, ok = recorder.ResponseWriter.(http.Flusher)
		}
	}
	if !ok {
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return flusher, true
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, payload interface{}) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", encoded); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
