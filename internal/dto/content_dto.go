package dto

import (
	"time"

	"github.com/noah-isme/lumina-dashboard-api/internal/models"
)

// Content list filter values.
const (
	ContentTypeFilterAll = "all"

	ContentSortByTitle     = "title"
	ContentSortByUpdatedAt = "updatedAt"

	SortDirectionAsc  = "asc"
	SortDirectionDesc = "desc"
)

// Reason codes surfaced by mutation endpoints.
const (
	MutationReasonNotFound  = "not_found"
	MutationReasonForbidden = "forbidden"
	MutationReasonUnknown   = "unknown"
	MutationReasonError     = "error"
)

// ContentOwner is the owner projection on content cards.
type ContentOwner struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image,omitempty"`
}

// ContentCardResponse is the narrow list projection; it never exposes fields
// beyond what the dashboard cards render.
type ContentCardResponse struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Type      string       `json:"type"`
	UpdatedAt string       `json:"updated_at"`
	Owner     ContentOwner `json:"owner"`
}

// ContentResponse serializes a full content row for mutation responses.
type ContentResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Type           string    `json:"type"`
	OrganizationID string    `json:"organization_id"`
	FolderID       *string   `json:"folder_id,omitempty"`
	OwnerID        string    `json:"owner_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ContentListRequest captures query params for the list endpoint.
type ContentListRequest struct {
	PageIndex     int
	PageSize      int
	Type          string
	SortBy        string
	SortDirection string
	SearchQuery   string
}

// ContentListFilters echoes the normalized filters a list call ran with.
type ContentListFilters struct {
	Type          string `json:"type"`
	SortBy        string `json:"sort_by"`
	SortDirection string `json:"sort_direction"`
	SearchQuery   string `json:"search_query,omitempty"`
}

// ContentListMeta carries the pagination counters of a list result.
// FilteredCount counts rows matching the filter; TotalCount counts every row
// in the organization regardless of filters.
type ContentListMeta struct {
	PageIndex     int   `json:"page_index"`
	PageSize      int   `json:"page_size"`
	FilteredCount int64 `json:"filtered_count"`
	TotalCount    int64 `json:"total_count"`
}

// ContentListResult wraps one page of content cards.
type ContentListResult struct {
	Items    []ContentCardResponse `json:"items"`
	Meta     ContentListMeta       `json:"meta"`
	Filters  ContentListFilters    `json:"filters"`
	CacheHit bool                  `json:"cache_hit"`
}

// AddContentRequest validates content creation payloads. OrganizationID is
// optional; when present it must match the organization resolved from the
// route, which stays authoritative.
type AddContentRequest struct {
	Title          string  `json:"title" validate:"max=255"`
	Type           string  `json:"type" validate:"required,oneof=course microlearning"`
	FolderID       *string `json:"folder_id" validate:"omitempty,uuid4"`
	OrganizationID string  `json:"organization_id" validate:"omitempty,uuid4"`
}

// DeleteContentResult is the discriminated outcome of a delete request.
type DeleteContentResult struct {
	OK      bool   `json:"ok"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// DuplicateContentResult is the discriminated outcome of a duplicate request.
type DuplicateContentResult struct {
	OK      bool   `json:"ok"`
	NewID   string `json:"new_id,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewContentCardResponse converts model -> card DTO. UpdatedAt is rendered as
// an ISO-8601 string so the UI never parses locale-dependent formats.
func NewContentCardResponse(model models.Content) ContentCardResponse {
	return ContentCardResponse{
		ID:        model.ID,
		Title:     model.Title,
		Type:      model.Type,
		UpdatedAt: model.UpdatedAt.UTC().Format(time.RFC3339),
		Owner: ContentOwner{
			ID:    model.Owner.ID,
			Name:  model.Owner.Name,
			Image: model.Owner.Image,
		},
	}
}

// NewContentResponse converts model -> full DTO.
func NewContentResponse(model models.Content) ContentResponse {
	return ContentResponse{
		ID:             model.ID,
		Title:          model.Title,
		Type:           model.Type,
		OrganizationID: model.OrganizationID,
		FolderID:       model.FolderID,
		OwnerID:        model.OwnerID,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}
