package service

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/noah-isme/lumina-dashboard-api/internal/dto"
	"github.com/noah-isme/lumina-dashboard-api/internal/repository"
)

const defaultActivityPageSize = 20

// ContentActivityService reads the audit history of a content record. History
// stays readable after the content row is deleted, but never across the
// tenant boundary: a foreign organization's content id yields an empty page,
// indistinguishable from an id that never existed.
type ContentActivityService interface {
	ListForContent(ctx context.Context, scope Scope, contentID string, req dto.ContentActivityListRequest) (dto.ContentActivityListResponse, error)
}

type contentActivityService struct {
	activities repository.ContentActivityRepository
	logger     zerolog.Logger
}

// NewContentActivityService constructs the audit history service.
func NewContentActivityService(activities repository.ContentActivityRepository, logger zerolog.Logger) ContentActivityService {
	return &contentActivityService{
		activities: activities,
		logger:     logger.With().Str("component", "content_activity_service").Logger(),
	}
}

func (s *contentActivityService) ListForContent(ctx context.Context, scope Scope, contentID string, req dto.ContentActivityListRequest) (dto.ContentActivityListResponse, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultActivityPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	entries, total, err := s.activities.List(ctx, repository.ContentActivityFilter{
		OrganizationID: scope.OrganizationID,
		ContentID:      contentID,
		Page:           page,
		PageSize:       pageSize,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("content_id", contentID).Msg("failed to list content activities")
		return dto.ContentActivityListResponse{}, err
	}

	items := make([]dto.ContentActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewContentActivityResponse(entry))
	}

	return dto.ContentActivityListResponse{
		Items: items,
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: calculateTotalPages(total, pageSize),
		},
	}, nil
}

func calculateTotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}
