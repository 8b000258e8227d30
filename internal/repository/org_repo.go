package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/lumina-dashboard-api/internal/models"
)

// OrganizationRepository resolves tenant records.
type OrganizationRepository interface {
	GetBySlug(ctx context.Context, slug string) (models.Organization, error)
}

// MembershipRepository answers role questions for a user within an
// organization.
type MembershipRepository interface {
	// GetRole returns the member's role, or "" when the user is not a member.
	GetRole(ctx context.Context, userID, organizationID string) (string, error)
	IsOrganizationAdmin(ctx context.Context, userID, organizationID string) (bool, error)
}

type organizationRepository struct {
	db *gorm.DB
}

type membershipRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository constructs the organization repository.
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

// NewMembershipRepository constructs the membership repository.
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *organizationRepository) GetBySlug(ctx context.Context, slug string) (models.Organization, error) {
	var organization models.Organization
	err := r.db.WithContext(ctx).
		Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).
		First(&organization).Error
	return organization, err
}

func (r *membershipRepository) GetRole(ctx context.Context, userID, organizationID string) (string, error) {
	var memberships []models.Membership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND organization_id = ?", userID, organizationID).
		Limit(1).
		Find(&memberships).Error
	if err != nil {
		return "", err
	}
	if len(memberships) == 0 {
		return "", nil
	}
	return memberships[0].Role, nil
}

func (r *membershipRepository) IsOrganizationAdmin(ctx context.Context, userID, organizationID string) (bool, error) {
	role, err := r.GetRole(ctx, userID, organizationID)
	if err != nil {
		return false, err
	}
	return role == models.MembershipRoleAdmin, nil
}
