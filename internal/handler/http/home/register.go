package home

import "net/http"

// Register registers the feed serving route with the given mux.
func Register(mux *http.ServeMux, svc FeedServer) {
	mux.Handle("GET /home", GetHandler{Svc: svc})
}
