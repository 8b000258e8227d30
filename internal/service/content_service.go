package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/lumina-dashboard-api/internal/cache"
	"github.com/noah-isme/lumina-dashboard-api/internal/dto"
	"github.com/noah-isme/lumina-dashboard-api/internal/models"
	"github.com/noah-isme/lumina-dashboard-api/internal/observability"
	"github.com/noah-isme/lumina-dashboard-api/internal/repository"
)

const (
	defaultPageSize = 24
	maxPageSize     = 100

	maxTitleLength = 255
	copySuffix     = " (copy)"

	contentsCacheKind = "contents"
)

// ErrOrganizationMismatch indicates a payload named a different organization
// than the one resolved from the request.
var ErrOrganizationMismatch = errors.New("organization id does not match request scope")

// Scope is the authenticated organization context a request runs under. It
// comes from the session middleware, never from client payloads.
type Scope struct {
	OrganizationID string
	UserID         string
}

// ContentService exposes the contents feature: list, add, delete, duplicate.
type ContentService interface {
	List(ctx context.Context, scope Scope, req dto.ContentListRequest) (dto.ContentListResult, error)
	Add(ctx context.Context, scope Scope, req dto.AddContentRequest) (dto.ContentResponse, error)
	Delete(ctx context.Context, scope Scope, contentID string) dto.DeleteContentResult
	Duplicate(ctx context.Context, scope Scope, contentID string) dto.DuplicateContentResult
}

type contentService struct {
	contents    repository.ContentRepository
	memberships repository.MembershipRepository
	cache       cache.Coordinator
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewContentService constructs the content service.
func NewContentService(
	contents repository.ContentRepository,
	memberships repository.MembershipRepository,
	cacheCoordinator cache.Coordinator,
	validate *validator.Validate,
	logger zerolog.Logger,
) ContentService {
	return &contentService{
		contents:    contents,
		memberships: memberships,
		cache:       cacheCoordinator,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "content_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/lumina-dashboard-api/internal/service/content"),
	}
}

func (s *contentService) List(ctx context.Context, scope Scope, req dto.ContentListRequest) (dto.ContentListResult, error) {
	ctx, span := s.tracer.Start(ctx, "contents.list")
	defer span.End()

	filter := s.buildFilter(scope, req)
	span.SetAttributes(
		attribute.String("organization.id", scope.OrganizationID),
		attribute.Int("page.index", filter.PageIndex),
		attribute.Int("page.size", filter.PageSize),
	)

	tag := s.cache.Tag(contentsCacheKind, scope.OrganizationID)
	key := s.cache.Key(tag,
		strconv.Itoa(filter.PageIndex),
		strconv.Itoa(filter.PageSize),
		filter.Type,
		filter.SortBy,
		filter.SortDirection,
		filter.SearchQuery,
	)

	var cached dto.ContentListResult
	if hit, err := s.cache.Fetch(ctx, key, &cached); err != nil {
		s.logger.Warn().Err(err).Msg("failed to read contents cache")
	} else if hit {
		observability.ListCacheEvents().WithLabelValues("hit").Inc()
		cached.CacheHit = true
		return cached, nil
	}
	observability.ListCacheEvents().WithLabelValues("miss").Inc()

	page, err := s.contents.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list query failed")
		return dto.ContentListResult{}, err
	}

	items := make([]dto.ContentCardResponse, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, dto.NewContentCardResponse(item))
	}

	result := dto.ContentListResult{
		Items: items,
		Meta: dto.ContentListMeta{
			PageIndex:     filter.PageIndex,
			PageSize:      filter.PageSize,
			FilteredCount: page.FilteredCount,
			TotalCount:    page.TotalCount,
		},
		Filters: dto.ContentListFilters{
			Type:          filter.Type,
			SortBy:        filter.SortBy,
			SortDirection: filter.SortDirection,
			SearchQuery:   filter.SearchQuery,
		},
	}

	if err := s.cache.Store(ctx, tag, key, result); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store contents cache")
	}

	return result, nil
}

func (s *contentService) Add(ctx context.Context, scope Scope, req dto.AddContentRequest) (dto.ContentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "contents.add")
	defer span.End()

	req.Title = strings.TrimSpace(s.sanitizer.Sanitize(req.Title))
	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.ContentResponse{}, err
	}
	if req.OrganizationID != "" && req.OrganizationID != scope.OrganizationID {
		span.SetStatus(codes.Error, "organization mismatch")
		return dto.ContentResponse{}, ErrOrganizationMismatch
	}

	content := models.Content{
		Title:          req.Title,
		Type:           req.Type,
		OrganizationID: scope.OrganizationID,
		FolderID:       copyFolderID(req.FolderID),
		OwnerID:        scope.UserID,
	}

	activity := s.creationActivity(scope, content)
	if err := s.contents.CreateWithActivity(ctx, &content, &activity); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		observability.ContentMutations().WithLabelValues("create", "error").Inc()
		return dto.ContentResponse{}, err
	}

	s.invalidateContents(ctx, scope.OrganizationID)
	observability.ContentMutations().WithLabelValues("create", "ok").Inc()

	return dto.NewContentResponse(content), nil
}

func (s *contentService) Delete(ctx context.Context, scope Scope, contentID string) dto.DeleteContentResult {
	ctx, span := s.tracer.Start(ctx, "contents.delete")
	defer span.End()

	content, err := s.contents.FindInOrganization(ctx, scope.OrganizationID, contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.ContentMutations().WithLabelValues("delete", "not_found").Inc()
			return dto.DeleteContentResult{
				OK:      false,
				Reason:  dto.MutationReasonNotFound,
				Message: "Content not found (maybe already deleted).",
			}
		}
		s.logger.Error().Err(err).Str("content_id", contentID).Msg("failed to load content for delete")
		return s.unknownDeleteResult(span, err)
	}

	isOrgAdmin, err := s.memberships.IsOrganizationAdmin(ctx, scope.UserID, scope.OrganizationID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to resolve organization role")
		return s.unknownDeleteResult(span, err)
	}

	if !canModify(content, scope.UserID, isOrgAdmin) {
		span.SetStatus(codes.Error, "forbidden")
		observability.ContentMutations().WithLabelValues("delete", "forbidden").Inc()
		return dto.DeleteContentResult{
			OK:      false,
			Reason:  dto.MutationReasonForbidden,
			Message: "You are not allowed to delete this content.",
		}
	}

	changes := DetectChanges(ContentSnapshot(content), DeletionSnapshot(), ContentTrackedFields, nil)
	activity := models.ContentActivity{
		ActionType: models.ActionTypeDelete,
		ActorID:    scope.UserID,
		ActorType:  models.ActorTypeMember,
		Metadata:   changes.JSONMap(),
	}

	if err := s.contents.DeleteWithActivity(ctx, scope.OrganizationID, contentID, &activity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Lost a race against a concurrent delete; zero rows affected is
			// "not found", not an error.
			observability.ContentMutations().WithLabelValues("delete", "not_found").Inc()
			return dto.DeleteContentResult{
				OK:      false,
				Reason:  dto.MutationReasonNotFound,
				Message: "Content not found (maybe already deleted).",
			}
		}
		s.logger.Error().Err(err).Str("content_id", contentID).Msg("failed to delete content")
		return s.unknownDeleteResult(span, err)
	}

	s.invalidateContents(ctx, scope.OrganizationID)
	observability.ContentMutations().WithLabelValues("delete", "ok").Inc()

	return dto.DeleteContentResult{OK: true}
}

func (s *contentService) Duplicate(ctx context.Context, scope Scope, contentID string) dto.DuplicateContentResult {
	ctx, span := s.tracer.Start(ctx, "contents.duplicate")
	defer span.End()

	source, err := s.contents.FindInOrganization(ctx, scope.OrganizationID, contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.ContentMutations().WithLabelValues("duplicate", "not_found").Inc()
			return dto.DuplicateContentResult{
				OK:      false,
				Reason:  dto.MutationReasonNotFound,
				Message: "Content not found.",
			}
		}
		s.logger.Error().Err(err).Str("content_id", contentID).Msg("failed to load content for duplicate")
		span.RecordError(err)
		return dto.DuplicateContentResult{
			OK:      false,
			Reason:  dto.MutationReasonError,
			Message: "Unexpected error duplicating the content.",
		}
	}

	copy := models.Content{
		Title:          duplicateTitle(source.Title),
		Type:           source.Type,
		OrganizationID: scope.OrganizationID,
		FolderID:       copyFolderID(source.FolderID),
		OwnerID:        scope.UserID,
	}

	activity := s.creationActivity(scope, copy)
	if err := s.contents.CreateWithActivity(ctx, &copy, &activity); err != nil {
		s.logger.Error().Err(err).Str("content_id", contentID).Msg("failed to duplicate content")
		span.RecordError(err)
		observability.ContentMutations().WithLabelValues("duplicate", "error").Inc()
		return dto.DuplicateContentResult{
			OK:      false,
			Reason:  dto.MutationReasonError,
			Message: "Unexpected error duplicating the content.",
		}
	}

	s.invalidateContents(ctx, scope.OrganizationID)
	observability.ContentMutations().WithLabelValues("duplicate", "ok").Inc()

	return dto.DuplicateContentResult{OK: true, NewID: copy.ID}
}

func (s *contentService) buildFilter(scope Scope, req dto.ContentListRequest) repository.ContentFilter {
	return repository.ContentFilter{
		OrganizationID: scope.OrganizationID,
		SearchQuery:    strings.TrimSpace(req.SearchQuery),
		Type:           normalizeTypeFilter(req.Type),
		SortBy:         normalizeSortBy(req.SortBy),
		SortDirection:  normalizeSortDirection(req.SortDirection),
		PageIndex:      normalizePageIndex(req.PageIndex),
		PageSize:       clampPageSize(req.PageSize),
	}
}

// creationActivity reports every tracked field as new; previous is nil so the
// detector emits {old: null, new: value} entries.
func (s *contentService) creationActivity(scope Scope, content models.Content) models.ContentActivity {
	changes := DetectChanges(nil, ContentSnapshot(content), ContentTrackedFields, nil)
	return models.ContentActivity{
		ActionType: models.ActionTypeCreate,
		ActorID:    scope.UserID,
		ActorType:  models.ActorTypeMember,
		Metadata:   changes.JSONMap(),
	}
}

// invalidateContents drops cached list results after a committed mutation.
// The mutation already succeeded, so cache failures are logged, not surfaced.
func (s *contentService) invalidateContents(ctx context.Context, organizationID string) {
	tag := s.cache.Tag(contentsCacheKind, organizationID)
	if err := s.cache.Invalidate(ctx, tag); err != nil {
		s.logger.Warn().Err(err).Str("tag", tag).Msg("failed to invalidate contents cache")
	}
}

func (s *contentService) unknownDeleteResult(span trace.Span, err error) dto.DeleteContentResult {
	span.RecordError(err)
	span.SetStatus(codes.Error, "delete failed")
	observability.ContentMutations().WithLabelValues("delete", "error").Inc()
	return dto.DeleteContentResult{
		OK:      false,
		Reason:  dto.MutationReasonUnknown,
		Message: "Unexpected error.",
	}
}

// canModify is the authorization predicate: the actor owns the content or
// holds the org-admin role.
func canModify(content models.Content, actorID string, isOrgAdmin bool) bool {
	return content.OwnerID == actorID || isOrgAdmin
}

// duplicateTitle appends the copy marker while keeping the result inside the
// column limit the create path enforces. The source title is shortened before
// the marker so the marker always survives.
func duplicateTitle(source string) string {
	base := strings.TrimSpace(source)
	limit := maxTitleLength - utf8.RuneCountInString(copySuffix)
	if utf8.RuneCountInString(base) > limit {
		base = string([]rune(base)[:limit])
	}
	return base + copySuffix
}

func copyFolderID(folderID *string) *string {
	if folderID == nil {
		return nil
	}
	id := *folderID
	return &id
}

func normalizeTypeFilter(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case models.ContentTypeCourse:
		return models.ContentTypeCourse
	case models.ContentTypeMicrolearning:
		return models.ContentTypeMicrolearning
	default:
		return dto.ContentTypeFilterAll
	}
}

func normalizeSortBy(value string) string {
	if strings.EqualFold(strings.TrimSpace(value), dto.ContentSortByTitle) {
		return dto.ContentSortByTitle
	}
	return dto.ContentSortByUpdatedAt
}

func normalizeSortDirection(value string) string {
	if strings.EqualFold(strings.TrimSpace(value), dto.SortDirectionAsc) {
		return dto.SortDirectionAsc
	}
	return dto.SortDirectionDesc
}

func normalizePageIndex(value int) int {
	if value < 0 {
		return 0
	}
	return value
}

func clampPageSize(value int) int {
	if value <= 0 {
		return defaultPageSize
	}
	if value > maxPageSize {
		return maxPageSize
	}
	return value
}
