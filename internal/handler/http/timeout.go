package http

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Timeout caps the wall-clock time of a request. The handler runs with a
// deadline context so a slow feed plan or a stuck query observes cancellation;
// if it still has not answered when the deadline passes, the client gets a
// 504 and any late handler writes are discarded.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			dw := &deadlineWriter{inner: w}
			done := make(chan struct{})

			go func() {
				next.ServeHTTP(dw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				dw.expire()
			}
		})
	}
}

// deadlineWriter serializes the race between the handler goroutine and the
// timeout branch: whichever writes first wins, the other becomes a no-op.
type deadlineWriter struct {
	inner   http.ResponseWriter
	mu      sync.Mutex
	wrote   bool
	expired bool
}

func (dw *deadlineWriter) Header() http.Header { return dw.inner.Header() }

func (dw *deadlineWriter) WriteHeader(status int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.expired || dw.wrote {
		return
	}
	dw.wrote = true
	dw.inner.WriteHeader(status)
}

func (dw *deadlineWriter) Write(p []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.expired {
		return 0, http.ErrHandlerTimeout
	}
	if !dw.wrote {
		dw.wrote = true
		dw.inner.WriteHeader(http.StatusOK)
	}
	return dw.inner.Write(p)
}

// expire sends the 504 unless the handler already answered.
func (dw *deadlineWriter) expire() {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	dw.expired = true
	if dw.wrote {
		return
	}
	dw.inner.Header().Set("Content-Type", "application/json")
	dw.inner.WriteHeader(http.StatusGatewayTimeout)
	_, _ = dw.inner.Write([]byte(`{"error":"request timeout"}`))
}
