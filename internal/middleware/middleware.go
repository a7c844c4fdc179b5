package middleware

import (
	"net/http"
	"strconv"

	"github.com/dealbrief/memoapi/internal/handlers"
	"github.com/dealbrief/memoapi/internal/metrics"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
	id           string
}

var HealthHandler = Wrap(handlers.HealthHandler)

var UploadDocumentsHandler = Wrap(handlers.UploadDocumentsHandler)
var ListDocumentsHandler = Wrap(handlers.ListDocumentsHandler)
var GetDocumentHandler = Wrap(handlers.GetDocumentHandler)
var DeleteDocumentHandler = Wrap(handlers.DeleteDocumentHandler)
var ReprocessDocumentHandler = Wrap(handlers.ReprocessDocumentHandler)
var DocumentProgressStreamHandler = Wrap(handlers.DocumentProgressStreamHandler)

var AskHandler = Wrap(handlers.AskHandler)
var AskStreamHandler = Wrap(handlers.AskStreamHandler)
var QAHistoryHandler = Wrap(handlers.QAHistoryHandler)
var SuggestedQuestionsHandler = Wrap(handlers.SuggestedQuestionsHandler)
var CreateSessionHandler = Wrap(handlers.CreateSessionHandler)
var ListSessionsHandler = Wrap(handlers.ListSessionsHandler)
var GetSessionHandler = Wrap(handlers.GetSessionHandler)
var DeleteSessionHandler = Wrap(handlers.DeleteSessionHandler)
var AddSessionMessageHandler = Wrap(handlers.AddSessionMessageHandler)

var GetExtractionHandler = Wrap(handlers.GetExtractionHandler)
var ListExtractionsHandler = Wrap(handlers.ListExtractionsHandler)
var ProcessExtractionHandler = Wrap(handlers.ProcessExtractionHandler)
var ComparisonDocumentsHandler = Wrap(handlers.ComparisonDocumentsHandler)
var GenerateFAQHandler = Wrap(handlers.GenerateFAQHandler)
var GetFAQHandler = Wrap(handlers.GetFAQHandler)
var RegenerateFAQHandler = Wrap(handlers.RegenerateFAQHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}
func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Info("New request received")
	//TODO:make this cleaner
	re = injectTrace(re)
	re = authenticate(re)
	if re.badRequest.isBadRequest {
		handleBadRequest(re)
		return re //stop if auth fails
	}
	//re = rateLimiter(re)
	//if re.badRequest.isBadRequest {
	//	handleBadRequest(re)
	//	return re //stop here if rate limit fails
	//}

	return re
}
