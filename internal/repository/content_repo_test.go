package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/lumina-dashboard-api/internal/models"
)

const (
	testOrgID      = "11111111-1111-4111-8111-111111111111"
	otherOrgID     = "22222222-2222-4222-8222-222222222222"
	testOwnerID    = "33333333-3333-4333-8333-333333333333"
	courseBID      = "aaaaaaaa-0000-4000-8000-000000000001"
	courseA1ID     = "bbbbbbbb-0000-4000-8000-000000000002"
	courseA2ID     = "cccccccc-0000-4000-8000-000000000003"
	microlearnCID  = "dddddddd-0000-4000-8000-000000000004"
	missingContent = "eeeeeeee-0000-4000-8000-00000000dead"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.Membership{},
		&models.Content{},
		&models.ContentActivity{},
	))

	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()

	require.NoError(t, db.Create(&models.User{ID: testOwnerID, Name: "Dana"}).Error)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []models.Content{
		{ID: courseBID, Title: "B", Type: models.ContentTypeCourse, OrganizationID: testOrgID, OwnerID: testOwnerID, CreatedAt: base, UpdatedAt: base.Add(3 * time.Hour)},
		{ID: courseA1ID, Title: "A", Type: models.ContentTypeCourse, OrganizationID: testOrgID, OwnerID: testOwnerID, CreatedAt: base, UpdatedAt: base.Add(2 * time.Hour)},
		{ID: courseA2ID, Title: "A", Type: models.ContentTypeCourse, OrganizationID: testOrgID, OwnerID: testOwnerID, CreatedAt: base, UpdatedAt: base.Add(1 * time.Hour)},
		{ID: microlearnCID, Title: "C", Type: models.ContentTypeMicrolearning, OrganizationID: testOrgID, OwnerID: testOwnerID, CreatedAt: base, UpdatedAt: base},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}
}

func TestListFiltersSortsAndCounts(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewContentRepository(db)

	page, err := repo.List(context.Background(), ContentFilter{
		OrganizationID: testOrgID,
		Type:           models.ContentTypeCourse,
		SortBy:         "title",
		SortDirection:  "asc",
		PageIndex:      0,
		PageSize:       2,
	})
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	// Title tie between the two "A" courses resolves on the id secondary sort.
	require.Equal(t, courseA1ID, page.Items[0].ID)
	require.Equal(t, courseA2ID, page.Items[1].ID)
	require.Equal(t, int64(3), page.FilteredCount)
	require.Equal(t, int64(4), page.TotalCount)
	require.Equal(t, "Dana", page.Items[0].Owner.Name)
}

func TestListPageBeyondRange(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewContentRepository(db)

	page, err := repo.List(context.Background(), ContentFilter{
		OrganizationID: testOrgID,
		Type:           models.ContentTypeCourse,
		SortBy:         "title",
		SortDirection:  "asc",
		PageIndex:      5,
		PageSize:       2,
	})
	require.NoError(t, err)

	require.Empty(t, page.Items)
	require.Equal(t, int64(3), page.FilteredCount)
	require.Equal(t, int64(4), page.TotalCount)
}

func TestListSearchIsCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	require.NoError(t, db.Create(&models.Content{
		ID: "ffffffff-0000-4000-8000-000000000005", Title: "Advanced Security",
		Type: models.ContentTypeCourse, OrganizationID: testOrgID, OwnerID: testOwnerID,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}).Error)
	repo := NewContentRepository(db)

	page, err := repo.List(context.Background(), ContentFilter{
		OrganizationID: testOrgID,
		SearchQuery:    "SECURITY",
		PageSize:       10,
	})
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	require.Equal(t, "Advanced Security", page.Items[0].Title)
	require.Equal(t, int64(1), page.FilteredCount)
	require.Equal(t, int64(5), page.TotalCount)
}

func TestListSearchMatchesWildcardsLiterally(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.User{ID: testOwnerID, Name: "Dana"}).Error)
	now := time.Now().UTC()
	for i, title := range []string{"intro_course", "introXcourse", "100% done"} {
		require.NoError(t, db.Create(&models.Content{
			ID:             fmt.Sprintf("abcdef00-0000-4000-8000-%012d", i),
			Title:          title,
			Type:           models.ContentTypeCourse,
			OrganizationID: testOrgID,
			OwnerID:        testOwnerID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}).Error)
	}
	repo := NewContentRepository(db)

	page, err := repo.List(context.Background(), ContentFilter{
		OrganizationID: testOrgID,
		SearchQuery:    "intro_course",
		PageSize:       10,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.FilteredCount)
	require.Len(t, page.Items, 1)
	require.Equal(t, "intro_course", page.Items[0].Title)

	page, err = repo.List(context.Background(), ContentFilter{
		OrganizationID: testOrgID,
		SearchQuery:    "100%",
		PageSize:       10,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.FilteredCount)
	require.Equal(t, "100% done", page.Items[0].Title)
}

func TestListSortsByUpdatedAtDescendingByDefault(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewContentRepository(db)

	page, err := repo.List(context.Background(), ContentFilter{
		OrganizationID: testOrgID,
		PageSize:       10,
	})
	require.NoError(t, err)

	require.Len(t, page.Items, 4)
	require.Equal(t, courseBID, page.Items[0].ID)
	require.Equal(t, microlearnCID, page.Items[3].ID)
}

func TestCreateWithActivitySharesTimestamp(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.User{ID: testOwnerID, Name: "Dana"}).Error)
	repo := NewContentRepository(db)

	content := models.Content{
		Title:          "Fresh",
		Type:           models.ContentTypeCourse,
		OrganizationID: testOrgID,
		OwnerID:        testOwnerID,
	}
	activity := models.ContentActivity{
		ActionType: models.ActionTypeCreate,
		ActorID:    testOwnerID,
		ActorType:  models.ActorTypeMember,
		Metadata:   datatypes.JSONMap{},
	}

	require.NoError(t, repo.CreateWithActivity(context.Background(), &content, &activity))

	require.NotEmpty(t, content.ID)
	require.Equal(t, content.CreatedAt, content.UpdatedAt)
	require.Equal(t, content.ID, activity.ContentID)
	require.True(t, activity.OccurredAt.Equal(content.CreatedAt))

	var stored models.ContentActivity
	require.NoError(t, db.Where("content_id = ?", content.ID).First(&stored).Error)
	require.Equal(t, models.ActionTypeCreate, stored.ActionType)
	require.Equal(t, testOrgID, stored.OrganizationID)
}

func TestDeleteWithActivity(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewContentRepository(db)

	activity := models.ContentActivity{
		ActionType: models.ActionTypeDelete,
		ActorID:    testOwnerID,
		ActorType:  models.ActorTypeMember,
		Metadata:   datatypes.JSONMap{},
	}
	require.NoError(t, repo.DeleteWithActivity(context.Background(), testOrgID, courseBID, &activity))

	var count int64
	require.NoError(t, db.Model(&models.Content{}).Where("id = ?", courseBID).Count(&count).Error)
	require.Zero(t, count)

	var stored models.ContentActivity
	require.NoError(t, db.Where("content_id = ?", courseBID).First(&stored).Error)
	require.Equal(t, models.ActionTypeDelete, stored.ActionType)
	require.Equal(t, testOrgID, stored.OrganizationID)

	// Second delete lost the race: no error class other than not-found, and no
	// extra audit row.
	again := models.ContentActivity{ActionType: models.ActionTypeDelete, ActorID: testOwnerID, ActorType: models.ActorTypeMember}
	err := repo.DeleteWithActivity(context.Background(), testOrgID, courseBID, &again)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var activityCount int64
	require.NoError(t, db.Model(&models.ContentActivity{}).Where("content_id = ?", courseBID).Count(&activityCount).Error)
	require.Equal(t, int64(1), activityCount)
}

func TestDeleteWithActivityRespectsTenantBoundary(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewContentRepository(db)

	activity := models.ContentActivity{ActionType: models.ActionTypeDelete, ActorID: testOwnerID, ActorType: models.ActorTypeMember}
	err := repo.DeleteWithActivity(context.Background(), otherOrgID, courseBID, &activity)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Content{}).Where("id = ?", courseBID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestFindInOrganization(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewContentRepository(db)

	content, err := repo.FindInOrganization(context.Background(), testOrgID, courseBID)
	require.NoError(t, err)
	require.Equal(t, "B", content.Title)
	require.Equal(t, "Dana", content.Owner.Name)

	_, err = repo.FindInOrganization(context.Background(), otherOrgID, courseBID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindInOrganization(context.Background(), testOrgID, missingContent)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
