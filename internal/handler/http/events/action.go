package events

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
	"github.com/antoinerimano/Netflix/internal/handler/http/respond"
)

type ActionHandler struct{ Svc EventLogger }

// ServeHTTP logs one explicit action event. The action must be one of the
// fixed enumerated types; anything else is rejected before persistence.
func (h ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ActionDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	err := h.Svc.LogAction(r.Context(), &entity.Action{
		ProfileID: req.ProfileID,
		TitleID:   req.ItemID,
		Action:    entity.ActionType(req.Action),
		SessionID: req.SessionID,
		Provider:  req.Provider,
	})
	if err != nil {
		var vErr *entity.ValidationError
		if errors.As(err, &vErr) {
			// Field-level validation messages are safe to return verbatim.
			respond.Error(w, http.StatusBadRequest, err)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, ActionResultDTO{OK: true})
}
