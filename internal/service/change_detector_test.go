package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lumina-dashboard-api/internal/models"
)

func TestDetectChangesCreation(t *testing.T) {
	updated := map[string]interface{}{
		"title":          "Onboarding 101",
		"type":           models.ContentTypeCourse,
		"organizationId": "7c9f4d8e-0000-4000-8000-000000000001",
		"folderId":       nil,
	}

	changes := DetectChanges(nil, updated, ContentTrackedFields, nil)

	require.Len(t, changes, 3)
	require.Nil(t, changes["title"].Old)
	require.Equal(t, "Onboarding 101", *changes["title"].New)
	require.Nil(t, changes["type"].Old)
	require.Equal(t, models.ContentTypeCourse, *changes["type"].New)
	// folderId is nil on both sides, so it never shows up.
	require.NotContains(t, changes, "folderId")
}

func TestDetectChangesIdenticalSnapshots(t *testing.T) {
	snapshot := map[string]interface{}{
		"title":          "Same",
		"type":           models.ContentTypeMicrolearning,
		"organizationId": "org",
		"folderId":       "folder",
	}

	changes := DetectChanges(snapshot, snapshot, ContentTrackedFields, nil)
	require.Empty(t, changes)
}

func TestDetectChangesHonoursTouchedFields(t *testing.T) {
	previous := map[string]interface{}{
		"title": "Before",
		"type":  models.ContentTypeCourse,
	}
	updated := map[string]interface{}{
		"title": "After",
		"type":  models.ContentTypeMicrolearning,
	}
	touched := map[string]struct{}{"title": {}}

	changes := DetectChanges(previous, updated, ContentTrackedFields, touched)

	require.Len(t, changes, 1)
	require.Equal(t, "Before", *changes["title"].Old)
	require.Equal(t, "After", *changes["title"].New)
}

func TestDetectChangesStructuralValues(t *testing.T) {
	previous := map[string]interface{}{
		"title": map[string]interface{}{"en": "Hello"},
	}
	updated := map[string]interface{}{
		"title": map[string]interface{}{"en": "Hello"},
	}

	changes := DetectChanges(previous, updated, []string{"title"}, nil)
	require.Empty(t, changes)

	updated["title"] = map[string]interface{}{"en": "Hallo"}
	changes = DetectChanges(previous, updated, []string{"title"}, nil)
	require.Len(t, changes, 1)
	require.Equal(t, `{"en":"Hello"}`, *changes["title"].Old)
	require.Equal(t, `{"en":"Hallo"}`, *changes["title"].New)
}

func TestDetectChangesDeletion(t *testing.T) {
	content := models.Content{
		Title:          "Leaving",
		Type:           models.ContentTypeCourse,
		OrganizationID: "7c9f4d8e-0000-4000-8000-000000000001",
	}

	changes := DetectChanges(ContentSnapshot(content), DeletionSnapshot(), ContentTrackedFields, nil)

	require.Len(t, changes, 3)
	require.Equal(t, "Leaving", *changes["title"].Old)
	require.Nil(t, changes["title"].New)
	require.Nil(t, changes["organizationId"].New)
}

func TestChangeSetJSONMap(t *testing.T) {
	title := "New title"
	changes := ChangeSet{
		"title": {Old: nil, New: &title},
	}

	metadata := changes.JSONMap()

	entry, ok := metadata["title"].(map[string]interface{})
	require.True(t, ok)
	require.Nil(t, entry["old"])
	require.Equal(t, "New title", entry["new"])
}
