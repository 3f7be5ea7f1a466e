// Package responsewriter captures the status code and body size of a
// response so the logging and metrics middleware can report what a handler
// actually sent.
package responsewriter

import (
	"net/http"
)

// ResponseWriter records response metadata as it passes through.
type ResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
	sent   bool
}

// Wrap returns a recording wrapper around w. The status defaults to 200
// because net/http sends 200 for handlers that never call WriteHeader.
func Wrap(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader records the first status code; later calls are ignored, the
// same way the stdlib treats duplicate WriteHeader calls.
func (w *ResponseWriter) WriteHeader(status int) {
	if w.sent {
		return
	}
	w.status = status
	w.sent = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.sent {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// StatusCode returns the status sent to the client.
func (w *ResponseWriter) StatusCode() int { return w.status }

// BytesWritten returns the accumulated body size.
func (w *ResponseWriter) BytesWritten() int { return w.bytes }

// Unwrap exposes the underlying writer for http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
