package events

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
	"github.com/antoinerimano/Netflix/internal/handler/http/respond"
	eventUC "github.com/antoinerimano/Netflix/internal/usecase/event"
)

// EventLogger is the ingestion capability the handlers depend on.
type EventLogger interface {
	LogImpressions(ctx context.Context, impressions []*entity.Impression) (int64, error)
	LogAction(ctx context.Context, action *entity.Action) error
}

type ImpressionsHandler struct{ Svc EventLogger }

// ServeHTTP logs a batch of impressions. The whole batch is rejected when any
// entry is invalid; duplicates within the retention window are silently
// skipped by the store, so the returned count may be below the batch size.
func (h ImpressionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ImpressionBatchDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	impressions := make([]*entity.Impression, 0, len(req.Items))
	for _, item := range req.Items {
		impressions = append(impressions, &entity.Impression{
			ProfileID: item.ProfileID,
			TitleID:   item.ItemID,
			SessionID: item.SessionID,
			RowType:   item.RowType,
			Position:  item.Position,
			Device:    item.Device,
			Country:   item.Country,
		})
	}

	count, err := h.Svc.LogImpressions(r.Context(), impressions)
	if err != nil {
		var vErr *entity.ValidationError
		switch {
		case errors.Is(err, eventUC.ErrEmptyBatch), errors.Is(err, eventUC.ErrBatchTooLarge):
			// Sentinel messages are safe to return verbatim.
			respond.Error(w, http.StatusBadRequest, err)
		case errors.As(err, &vErr):
			respond.Error(w, http.StatusBadRequest, err)
		default:
			respond.SafeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	respond.JSON(w, http.StatusOK, ImpressionBatchResultDTO{OK: true, Count: count})
}
