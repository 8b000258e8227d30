package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lumina-dashboard-api/internal/models"
)

// ContentActivityFilter narrows audit trail queries. OrganizationID is
// mandatory; history reads never cross the tenant boundary.
type ContentActivityFilter struct {
	OrganizationID string
	ContentID      string
	Page           int
	PageSize       int
}

// ContentActivityRepository reads the append-only audit trail. Writes happen
// through ContentRepository inside the mutation transaction.
type ContentActivityRepository interface {
	List(ctx context.Context, filter ContentActivityFilter) ([]models.ContentActivity, int64, error)
}

type contentActivityRepository struct {
	db *gorm.DB
}

// NewContentActivityRepository constructs the audit trail repository.
func NewContentActivityRepository(db *gorm.DB) ContentActivityRepository {
	return &contentActivityRepository{db: db}
}

func (r *contentActivityRepository) List(ctx context.Context, filter ContentActivityFilter) ([]models.ContentActivity, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ContentActivity{}).
		Where("organization_id = ?", filter.OrganizationID)

	if filter.ContentID != "" {
		query = query.Where("content_id = ?", filter.ContentID)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var entries []models.ContentActivity
	if err := query.Order("occurred_at DESC").Order("id ASC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
