package events

import "net/http"

// Register registers the telemetry ingestion routes with the given mux.
// Middleware (rate limiting in production) is applied to both routes in the
// order given.
func Register(mux *http.ServeMux, svc EventLogger, mw ...func(http.Handler) http.Handler) {
	wrap := func(h http.Handler) http.Handler {
		for i := len(mw) - 1; i >= 0; i-- {
			h = mw[i](h)
		}
		return h
	}

	mux.Handle("POST /events/impressions", wrap(ImpressionsHandler{Svc: svc}))
	mux.Handle("POST /events/action", wrap(ActionHandler{Svc: svc}))
}
