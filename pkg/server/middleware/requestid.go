package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"construct-hq/loom/pkg/telemetry/logging"
)

// RequestIDHeader is the HTTP header carrying the request id.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds client-supplied ids before they reach logs.
const maxRequestIDLength = 128

// RequestID assigns each request an id and stores it in the context with
// logging.WithRequestID. A client-supplied X-Request-ID is kept when it is
// non-empty and reasonably short; otherwise a UUID is generated. The id is
// echoed in the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), requestID)))
	})
}
