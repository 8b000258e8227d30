package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/noah-isme/lumina-dashboard-api/internal/models"
	"github.com/noah-isme/lumina-dashboard-api/internal/repository"
)

const (
	orgID    = "11111111-cccc-4ccc-8ccc-111111111111"
	memberID = "22222222-cccc-4ccc-8ccc-222222222222"
	otherID  = "33333333-cccc-4ccc-8ccc-333333333333"
)

func newOrgContextApp(t *testing.T, userID string) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Organization{}, &models.Membership{}))

	require.NoError(t, db.Create(&models.Organization{ID: orgID, Slug: "acme", Name: "Acme"}).Error)
	require.NoError(t, db.Create(&models.Membership{UserID: memberID, OrganizationID: orgID, Role: models.MembershipRoleAdmin}).Error)

	app := fiber.New()
	app.Get("/organizations/:slug/probe",
		func(c *fiber.Ctx) error {
			if userID != "" {
				c.Locals("user_id", userID)
			}
			return c.Next()
		},
		OrganizationContext(repository.NewOrganizationRepository(db), repository.NewMembershipRepository(db)),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"organization_id": c.Locals("organization_id"),
				"membership_role": c.Locals("membership_role"),
			})
		},
	)

	return app
}

func TestOrganizationContextResolvesMember(t *testing.T) {
	app := newOrgContextApp(t, memberID)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/organizations/acme/probe", nil))
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, orgID, payload["organization_id"])
	require.Equal(t, models.MembershipRoleAdmin, payload["membership_role"])
}

func TestOrganizationContextRejectsNonMember(t *testing.T) {
	app := newOrgContextApp(t, otherID)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/organizations/acme/probe", nil))
	require.NoError(t, err)

	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOrganizationContextUnknownSlug(t *testing.T) {
	app := newOrgContextApp(t, memberID)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/organizations/nope/probe", nil))
	require.NoError(t, err)

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOrganizationContextRequiresAuthentication(t *testing.T) {
	app := newOrgContextApp(t, "")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/organizations/acme/probe", nil))
	require.NoError(t, err)

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
