package http

import (
	"net/http"
)

const (
	maxPathBytes  = 2048
	maxQueryBytes = 1024
	maxBodyBytes  = 10 << 20
)

// InputValidation rejects requests that fall outside the bounds anything on
// this surface legitimately needs. The feed route carries a single numeric
// profileId query parameter and the event routes carry JSON bodies, so an
// oversized path or query string is never a real client.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) > maxPathBytes {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestURITooLong)
				_, _ = w.Write([]byte(`{"error":"URI too long"}`))
				return
			}
			if len(r.URL.RawQuery) > maxQueryBytes {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestURITooLong)
				_, _ = w.Write([]byte(`{"error":"query string too long"}`))
				return
			}

			// Impression batches top out around a few hundred KB; the hard
			// cap only exists to bound memory on garbage input.
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

			next.ServeHTTP(w, r)
		})
	}
}
