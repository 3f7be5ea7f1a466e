package home

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
	"github.com/antoinerimano/Netflix/internal/handler/http/respond"
	feedUC "github.com/antoinerimano/Netflix/internal/usecase/feed"
)

// FeedServer is the serving capability the handler depends on.
type FeedServer interface {
	Serve(ctx context.Context, profileID int64) (*entity.HomePayload, string, error)
}

type GetHandler struct{ Svc FeedServer }

// ServeHTTP returns the personalized home feed for the profile given by the
// profileId query parameter. The only caller-visible failure besides a bad
// profileId is "profile does not exist"; everything else inside feed
// composition degrades before reaching this handler.
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("profileId")
	if raw == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("profileId is required"))
		return
	}
	profileID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("profileId must be an integer"))
		return
	}

	payload, mode, err := h.Svc.Serve(r.Context(), profileID)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, feedUC.ErrInvalidProfileID) {
			code = http.StatusBadRequest
		} else if errors.Is(err, feedUC.ErrProfileNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseDTO(payload, mode))
}
