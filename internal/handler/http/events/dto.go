// Package events provides HTTP handlers for interaction telemetry ingestion:
// batched impression logging and single explicit action logging. Ingestion is
// write-only; the feed engine reads events back through its own repositories.
package events

// ImpressionDTO is one tile render within an impression batch.
type ImpressionDTO struct {
	ProfileID int64  `json:"profileId" example:"7"`
	ItemID    int64  `json:"itemId" example:"603"`
	SessionID string `json:"sessionId" example:"b31c2a90"`
	RowType   string `json:"rowType,omitempty" example:"trending"`
	Position  int    `json:"position,omitempty" example:"3"`
	Device    string `json:"device,omitempty" example:"tv"`
	Country   string `json:"country,omitempty" example:"FR"`
}

// ImpressionBatchDTO is the request body for impression batch logging.
type ImpressionBatchDTO struct {
	Items []ImpressionDTO `json:"items"`
}

// ImpressionBatchResultDTO reports how many impressions were actually
// inserted. Count may be below the batch size when duplicates were skipped.
type ImpressionBatchResultDTO struct {
	OK    bool  `json:"ok" example:"true"`
	Count int64 `json:"count" example:"42"`
}

// ActionDTO is the request body for explicit action logging.
type ActionDTO struct {
	ProfileID int64  `json:"profileId" example:"7"`
	ItemID    int64  `json:"itemId" example:"603"`
	Action    string `json:"action" example:"outbound"`
	SessionID string `json:"sessionId" example:"b31c2a90"`
	Provider  string `json:"provider,omitempty" example:"netflix"`
}

// ActionResultDTO acknowledges a logged action.
type ActionResultDTO struct {
	OK bool `json:"ok" example:"true"`
}
