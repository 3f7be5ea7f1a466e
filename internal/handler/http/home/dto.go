// Package home provides the HTTP handler for serving personalized home feeds.
// Serving is read-only: it returns the best available precomputed snapshot and
// never composes a feed inline.
package home

import "github.com/antoinerimano/Netflix/internal/domain/entity"

// RowDTO is the JSON structure for one feed row.
type RowDTO struct {
	RowKey       string               `json:"rowKey" example:"because_you_watched_603"`
	DisplayLabel string               `json:"displayLabel" example:"Because you watched The Matrix"`
	Items        []entity.ItemSummary `json:"items"`
}

// ResponseDTO is the JSON structure for the full home feed response.
// Mode reports which tier of the fallback chain produced the rows.
type ResponseDTO struct {
	Rows []RowDTO `json:"rows"`
	Mode string   `json:"mode" example:"snapshot"`
}

func toResponseDTO(payload *entity.HomePayload, mode string) ResponseDTO {
	rows := make([]RowDTO, 0, len(payload.Rows))
	for _, row := range payload.Rows {
		items := row.Items
		if items == nil {
			items = []entity.ItemSummary{}
		}
		rows = append(rows, RowDTO{
			RowKey:       row.RowKey,
			DisplayLabel: row.Title,
			Items:        items,
		})
	}
	return ResponseDTO{Rows: rows, Mode: mode}
}
