package models

import "time"

// Content types an organization can own.
const (
	ContentTypeCourse        = "course"
	ContentTypeMicrolearning = "microlearning"
)

// Content is a course or microlearning item. Every row belongs to exactly one
// organization and one owner; OrganizationID never changes after creation.
type Content struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string    `gorm:"size:255" json:"title"`
	Type           string    `gorm:"size:32;not null;index" json:"type"`
	OrganizationID string    `gorm:"type:uuid;not null;index" json:"organization_id"`
	FolderID       *string   `gorm:"type:uuid" json:"folder_id"`
	OwnerID        string    `gorm:"type:uuid;not null" json:"owner_id"`
	Owner          User      `gorm:"foreignKey:OwnerID" json:"owner"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `gorm:"index" json:"updated_at"`
}

// User carries the owner projection surfaced on content cards.
type User struct {
	ID    string  `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string  `gorm:"size:160;not null" json:"name"`
	Image *string `gorm:"size:512" json:"image"`
}

// Organization is the tenant boundary for contents.
type Organization struct {
	ID   string `gorm:"type:uuid;primaryKey" json:"id"`
	Slug string `gorm:"size:128;uniqueIndex;not null" json:"slug"`
	Name string `gorm:"size:255;not null" json:"name"`
}

// Membership roles within an organization.
const (
	MembershipRoleMember = "member"
	MembershipRoleAdmin  = "admin"
)

// Membership links a user to an organization with a role.
type Membership struct {
	UserID         string `gorm:"type:uuid;primaryKey" json:"user_id"`
	OrganizationID string `gorm:"type:uuid;primaryKey" json:"organization_id"`
	Role           string `gorm:"size:32;not null" json:"role"`
}
