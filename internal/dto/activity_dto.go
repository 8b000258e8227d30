package dto

import (
	"time"

	"github.com/noah-isme/lumina-dashboard-api/internal/models"
)

// PaginationMeta describes page-based list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// ContentActivityResponse serializes one audit record.
type ContentActivityResponse struct {
	ID         string                 `json:"id"`
	ContentID  string                 `json:"content_id"`
	ActionType string                 `json:"action_type"`
	ActorID    string                 `json:"actor_id"`
	ActorType  string                 `json:"actor_type"`
	Metadata   map[string]interface{} `json:"metadata"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// ContentActivityListRequest captures query params for the audit history
// endpoint.
type ContentActivityListRequest struct {
	Page     int
	PageSize int
}

// ContentActivityListResponse wraps a page of audit records.
type ContentActivityListResponse struct {
	Items      []ContentActivityResponse `json:"items"`
	Pagination PaginationMeta            `json:"pagination"`
}

// NewContentActivityResponse converts model -> DTO.
func NewContentActivityResponse(model models.ContentActivity) ContentActivityResponse {
	metadata := map[string]interface{}{}
	for key, value := range model.Metadata {
		metadata[key] = value
	}

	return ContentActivityResponse{
		ID:         model.ID,
		ContentID:  model.ContentID,
		ActionType: model.ActionType,
		ActorID:    model.ActorID,
		ActorType:  model.ActorType,
		Metadata:   metadata,
		OccurredAt: model.OccurredAt,
	}
}
