package handlers

import (
	"errors"
	"net/http"

	"github.com/dealbrief/memoapi/internal/adapter/utils"
	"github.com/dealbrief/memoapi/internal/analysis"
	"github.com/dealbrief/memoapi/internal/api"
	"github.com/dealbrief/memoapi/internal/domain/analysisModel"
	"github.com/dealbrief/memoapi/internal/domain/docModel"
)

// GetExtractionHandler godoc
// @Summary      Get the structured extraction for a document
// @Description  Returns the cached result, or a pending placeholder when extraction has not produced one yet.
// @Tags         Extraction
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  analysisModel.ExtractionResult
// @Failure      404  {object}  api.ErrorResponse
// @Router       /extraction/results/{id} [get]
func GetExtractionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	docId := utils.GetChiURLParam(r, "id")
	if _, found := handlerInstance.Documents.GetDocument(r.Context(), docId); !found {
		WriteErrorResponse(w, http.StatusNotFound, docId, "Document not found")
		return
	}

	result, found := handlerInstance.Analysis.CachedExtraction(r.Context(), docId)
	if !found {
		result = analysisModel.ExtractionResult{DocId: docId, Status: analysisModel.ResultStatusPending}
	}
	writeJsonResponse(w, http.StatusOK, result)
}

// ListExtractionsHandler godoc
// @Summary      List completed extractions for every document
// @Tags         Extraction
// @Produce      json
// @Success      200  {object}  api.ExtractionListResponse
// @Router       /extraction/results [get]
func ListExtractionsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	docs, err := handlerInstance.Documents.ListDocuments(r.Context())
	if err != nil {
		logAH.Error("Could not list documents", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage error")
		return
	}

	docIds := make([]string, len(docs))
	for i, doc := range docs {
		docIds[i] = doc.Id
	}
	results := handlerInstance.Analysis.CompletedExtractions(r.Context(), docIds)
	writeJsonResponse(w, http.StatusOK, api.ExtractionListResponse{Results: results, Total: len(results)})
}

// ProcessExtractionHandler godoc
// @Summary      Run structured extraction for a document
// @Description  Re-reads the stored file and runs the extraction prompt. Returns 409 when a run is already in flight.
// @Tags         Extraction
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  analysisModel.ExtractionResult
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse "Extraction already running for this document"
// @Router       /extraction/process/{id} [post]
func ProcessExtractionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	docId := utils.GetChiURLParam(r, "id")
	_, fullPath, ok := analysisTarget(w, r, docId)
	if !ok {
		return
	}

	result, err := handlerInstance.Analysis.ExtractDocument(r.Context(), docId, fullPath)
	if errors.Is(err, analysis.ErrAlreadyGenerating) {
		WriteErrorResponse(w, http.StatusConflict, docId, "Extraction already running for this document")
		return
	}
	if err != nil {
		logAH.Error("Extraction failed", "doc_id", docId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, docId, "Extraction failed")
		return
	}
	writeJsonResponse(w, http.StatusOK, result)
}

// ComparisonDocumentsHandler godoc
// @Summary      Completed extractions for side-by-side comparison
// @Tags         Comparison
// @Produce      json
// @Success      200  {object}  api.ComparisonResponse
// @Router       /comparison/documents [get]
func ComparisonDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	docs, err := handlerInstance.Documents.ListDocuments(r.Context())
	if err != nil {
		logAH.Error("Could not list documents", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage error")
		return
	}

	docIds := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Status == docModel.DocStatusProcessed {
			docIds = append(docIds, doc.Id)
		}
	}
	results := handlerInstance.Analysis.CompletedExtractions(r.Context(), docIds)
	writeJsonResponse(w, http.StatusOK, api.ComparisonResponse{Documents: results, Total: len(results)})
}

// faq ---------------------

// GenerateFAQHandler godoc
// @Summary      Generate the FAQ set for a document
// @Description  Returns the cached FAQ when one is already completed; otherwise runs generation.
// @Tags         FAQ
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  analysisModel.FAQResult
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse "FAQ generation already running for this document"
// @Router       /faq/generate/{id} [post]
func GenerateFAQHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	docId := utils.GetChiURLParam(r, "id")
	if cached, found := handlerInstance.Analysis.CachedFAQ(r.Context(), docId); found && cached.Status == analysisModel.ResultStatusCompleted {
		writeJsonResponse(w, http.StatusOK, cached)
		return
	}
	runFAQGeneration(w, r, docId)
}

// GetFAQHandler godoc
// @Summary      Get the FAQ set for a document
// @Description  Returns the cached result, or a pending placeholder when generation has not produced one yet.
// @Tags         FAQ
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  analysisModel.FAQResult
// @Failure      404  {object}  api.ErrorResponse
// @Router       /faq/get/{id} [get]
func GetFAQHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	docId := utils.GetChiURLParam(r, "id")
	doc, found := handlerInstance.Documents.GetDocument(r.Context(), docId)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, docId, "Document not found")
		return
	}

	result, found := handlerInstance.Analysis.CachedFAQ(r.Context(), docId)
	if !found {
		result = analysisModel.FAQResult{DocId: docId, DocName: doc.OriginalFilename, Status: analysisModel.ResultStatusPending}
	}
	writeJsonResponse(w, http.StatusOK, result)
}

// RegenerateFAQHandler godoc
// @Summary      Regenerate the FAQ set for a document
// @Description  Always runs generation again, overwriting any cached result.
// @Tags         FAQ
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  analysisModel.FAQResult
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse "FAQ generation already running for this document"
// @Router       /faq/regenerate/{id} [post]
func RegenerateFAQHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	runFAQGeneration(w, r, utils.GetChiURLParam(r, "id"))
}

// private helpers ---------------------

// analysisTarget loads the document and resolves its stored file, writing
// the error response itself when either is missing.
func analysisTarget(w http.ResponseWriter, r *http.Request, docId string) (docModel.Document, string, bool) {
	doc, found := handlerInstance.Documents.GetDocument(r.Context(), docId)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, docId, "Document not found")
		return docModel.Document{}, "", false
	}

	fullPath, errString := documentFilePath(doc.Filename)
	if errString != "" {
		WriteErrorResponse(w, http.StatusInternalServerError, docId, errString)
		return docModel.Document{}, "", false
	}
	return doc, fullPath, true
}

func runFAQGeneration(w http.ResponseWriter, r *http.Request, docId string) {
	doc, fullPath, ok := analysisTarget(w, r, docId)
	if !ok {
		return
	}

	result, err := handlerInstance.Analysis.GenerateFAQs(r.Context(), docId, doc.OriginalFilename, fullPath)
	if errors.Is(err, analysis.ErrAlreadyGenerating) {
		WriteErrorResponse(w, http.StatusConflict, docId, "FAQ generation already running for this document")
		return
	}
	if err != nil {
		logAH.Error("FAQ generation failed", "doc_id", docId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, docId, "FAQ generation failed")
		return
	}
	writeJsonResponse(w, http.StatusOK, result)
}
