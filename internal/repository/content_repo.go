package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/lumina-dashboard-api/internal/models"
)

// ContentFilter narrows content list queries. Every field is always present;
// zero values mean "no filter" so callers never build conditionally-shaped
// queries.
type ContentFilter struct {
	OrganizationID string
	SearchQuery    string
	Type           string // "" or "all" matches every type
	SortBy         string // title | updatedAt
	SortDirection  string // asc | desc
	PageIndex      int    // zero-based
	PageSize       int
}

// ContentPage bundles the three quantities a list read must agree on. All
// three are computed inside one read transaction so a concurrent write cannot
// produce a page from one snapshot and counts from another.
type ContentPage struct {
	Items         []models.Content
	FilteredCount int64
	TotalCount    int64
}

// ContentRepository persists content rows together with their audit trail.
type ContentRepository interface {
	List(ctx context.Context, filter ContentFilter) (ContentPage, error)
	FindInOrganization(ctx context.Context, organizationID, contentID string) (models.Content, error)
	CreateWithActivity(ctx context.Context, content *models.Content, activity *models.ContentActivity) error
	DeleteWithActivity(ctx context.Context, organizationID, contentID string, activity *models.ContentActivity) error
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository constructs the content repository.
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) List(ctx context.Context, filter ContentFilter) (ContentPage, error) {
	var page ContentPage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		filtered := applyContentFilters(tx.Model(&models.Content{}), filter)
		if err := filtered.Session(&gorm.Session{}).Count(&page.FilteredCount).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Content{}).
			Where("organization_id = ?", filter.OrganizationID).
			Count(&page.TotalCount).Error; err != nil {
			return err
		}

		query := applyContentFilters(tx.Model(&models.Content{}), filter)
		// Secondary order on the primary key keeps pagination stable when
		// sort-field values tie.
		query = query.Order(contentSortClause(filter.SortBy, filter.SortDirection)).Order("id ASC")
		if filter.PageSize > 0 {
			offset := filter.PageIndex * filter.PageSize
			query = query.Offset(offset).Limit(filter.PageSize)
		}

		return query.Preload("Owner").Find(&page.Items).Error
	})
	if err != nil {
		return ContentPage{}, err
	}
	return page, nil
}

func (r *contentRepository) FindInOrganization(ctx context.Context, organizationID, contentID string) (models.Content, error) {
	var content models.Content
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("id = ? AND organization_id = ?", contentID, organizationID).
		First(&content).Error
	return content, err
}

// CreateWithActivity inserts the content row and its CREATE audit record in
// one transaction. The creation timestamp is resolved once and reused for
// CreatedAt, UpdatedAt and the activity's OccurredAt, so audit time matches
// entity time exactly.
func (r *contentRepository) CreateWithActivity(ctx context.Context, content *models.Content, activity *models.ContentActivity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if content.ID == "" {
			content.ID = uuid.NewString()
		}
		if content.CreatedAt.IsZero() {
			content.CreatedAt = now
		}
		content.UpdatedAt = content.CreatedAt

		if err := tx.Create(content).Error; err != nil {
			return err
		}

		if activity.ID == "" {
			activity.ID = uuid.NewString()
		}
		activity.ContentID = content.ID
		activity.OrganizationID = content.OrganizationID
		activity.OccurredAt = content.CreatedAt
		return tx.Create(activity).Error
	})
}

// DeleteWithActivity removes the content row and appends the DELETE audit
// record in one transaction. When the row is already gone (a concurrent
// delete won the race) it returns gorm.ErrRecordNotFound and writes nothing.
func (r *contentRepository) DeleteWithActivity(ctx context.Context, organizationID, contentID string, activity *models.ContentActivity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND organization_id = ?", contentID, organizationID).
			Delete(&models.Content{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if activity.ID == "" {
			activity.ID = uuid.NewString()
		}
		activity.ContentID = contentID
		activity.OrganizationID = organizationID
		if activity.OccurredAt.IsZero() {
			activity.OccurredAt = time.Now().UTC()
		}
		return tx.Create(activity).Error
	})
}

func applyContentFilters(query *gorm.DB, filter ContentFilter) *gorm.DB {
	query = query.Where("organization_id = ?", filter.OrganizationID)

	if search := strings.TrimSpace(filter.SearchQuery); search != "" {
		// LIKE metacharacters in the term must match literally, so "a_b"
		// finds "a_b" and not "aXb".
		pattern := "%" + escapeLikeTerm(strings.ToLower(search)) + "%"
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\'`, pattern)
	}

	if filter.Type != "" && filter.Type != "all" {
		query = query.Where("type = ?", filter.Type)
	}

	return query
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLikeTerm(term string) string {
	return likeEscaper.Replace(term)
}

func contentSortClause(sortBy, direction string) string {
	column := "updated_at"
	if strings.EqualFold(strings.TrimSpace(sortBy), "title") {
		column = "title"
	}

	dir := "DESC"
	if strings.EqualFold(strings.TrimSpace(direction), "asc") {
		dir = "ASC"
	}

	return column + " " + dir
}
