package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// MsgTimeout is the body message when a request outlives its deadline.
const MsgTimeout = "Request timed out"

// Timeout cancels the request context after d using chi's Timeout. A handler
// that already answered keeps its response and chi's late 504 is dropped; a
// handler that wrote nothing gets a 504 envelope.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	deadline := chimiddleware.Timeout(d)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := &timeoutWriter{ResponseWriter: w}
			deadline(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r)
				tw.handlerDone = true
			})).ServeHTTP(tw, r)
		})
	}
}

// timeoutWriter lets the first status win. A 504 arriving after the handler
// returned without writing is chi's deadline signal.
type timeoutWriter struct {
	http.ResponseWriter
	wroteHeader bool
	handlerDone bool
}

func (tw *timeoutWriter) WriteHeader(code int) {
	if tw.wroteHeader {
		return
	}
	tw.wroteHeader = true

	if code == http.StatusGatewayTimeout && tw.handlerDone {
		tw.Header().Set("Content-Type", "application/json")
		tw.ResponseWriter.WriteHeader(code)
		_ = json.NewEncoder(tw.ResponseWriter).Encode(failureResponse{Success: false, Message: MsgTimeout})
		return
	}
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	if !tw.wroteHeader {
		tw.WriteHeader(http.StatusOK)
	}
	return tw.ResponseWriter.Write(b)
}
