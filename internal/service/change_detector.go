package service

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/noah-isme/lumina-dashboard-api/internal/models"
)

// ContentTrackedFields lists the content attributes recorded in audit
// metadata.
var ContentTrackedFields = []string{"title", "type", "organizationId", "folderId"}

// ChangeEntry records one field transition inside an audit change-set.
type ChangeEntry struct {
	Old *string `json:"old"`
	New *string `json:"new"`
}

// ChangeSet maps field names to detected transitions. Fields with no detected
// change are never present.
type ChangeSet map[string]ChangeEntry

// DetectChanges compares two snapshots across the tracked fields. A field is
// reported iff its canonical serialization differs between previous and
// updated, and (when touched is non-nil) the caller actually intended to
// write it — that keeps defaulted fields out of update diffs. A nil previous
// snapshot reports every changed field with a nil old value, which is the
// creation case. Pure function, no failure modes.
func DetectChanges(previous, updated map[string]interface{}, tracked []string, touched map[string]struct{}) ChangeSet {
	changes := ChangeSet{}
	for _, field := range tracked {
		var oldValue *string
		if previous != nil {
			oldValue = canonicalString(previous[field])
		}
		newValue := canonicalString(updated[field])

		if stringPtrEqual(oldValue, newValue) {
			continue
		}
		if touched != nil {
			if _, ok := touched[field]; !ok {
				continue
			}
		}

		changes[field] = ChangeEntry{Old: oldValue, New: newValue}
	}
	return changes
}

// JSONMap renders the change-set in the shape stored on activity rows.
func (c ChangeSet) JSONMap() datatypes.JSONMap {
	metadata := datatypes.JSONMap{}
	for field, entry := range c {
		change := map[string]interface{}{"old": nil, "new": nil}
		if entry.Old != nil {
			change["old"] = *entry.Old
		}
		if entry.New != nil {
			change["new"] = *entry.New
		}
		metadata[field] = change
	}
	return metadata
}

// ContentSnapshot projects the audited fields of a content row.
func ContentSnapshot(content models.Content) map[string]interface{} {
	snapshot := map[string]interface{}{
		"title":          content.Title,
		"type":           content.Type,
		"organizationId": content.OrganizationID,
		"folderId":       nil,
	}
	if content.FolderID != nil {
		snapshot["folderId"] = *content.FolderID
	}
	return snapshot
}

// DeletionSnapshot is the "all tracked fields became null" counterpart used
// on the delete path.
func DeletionSnapshot() map[string]interface{} {
	snapshot := make(map[string]interface{}, len(ContentTrackedFields))
	for _, field := range ContentTrackedFields {
		snapshot[field] = nil
	}
	return snapshot
}

// canonicalString serializes a value into its canonical comparable form:
// nil -> nil, primitives -> their string form, everything else -> a
// deterministic JSON rendering.
func canonicalString(value interface{}) *string {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case string:
		return &v
	case *string:
		if v == nil {
			return nil
		}
		s := *v
		return &s
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		s := fmt.Sprintf("%v", v)
		return &s
	case fmt.Stringer:
		s := v.String()
		return &s
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			s := fmt.Sprintf("%v", v)
			return &s
		}
		s := string(raw)
		return &s
	}
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
