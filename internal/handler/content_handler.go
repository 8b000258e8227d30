package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumina-dashboard-api/internal/dto"
	"github.com/noah-isme/lumina-dashboard-api/internal/service"
	"github.com/noah-isme/lumina-dashboard-api/internal/utils"
)

// ContentHandler exposes the organization-scoped contents endpoints.
type ContentHandler struct {
	service    service.ContentService
	activities service.ContentActivityService
	logger     zerolog.Logger
}

// NewContentHandler constructs the handler.
func NewContentHandler(contents service.ContentService, activities service.ContentActivityService, logger zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		service:    contents,
		activities: activities,
		logger:     logger.With().Str("component", "content_handler").Logger(),
	}
}

// Register wires the content routes. Mutations run behind mutationLimit when
// one is supplied.
func (h *ContentHandler) Register(router fiber.Router, mutationLimit fiber.Handler) {
	if mutationLimit == nil {
		mutationLimit = func(c *fiber.Ctx) error { return c.Next() }
	}

	router.Get("/", h.list)
	router.Post("/", mutationLimit, h.create)
	router.Delete("/:id", mutationLimit, h.remove)
	router.Post("/:id/duplicate", mutationLimit, h.duplicate)
	router.Get("/:id/activities", h.listActivities)
}

func (h *ContentHandler) list(c *fiber.Ctx) error {
	req, err := h.parseListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.List(c.Context(), scopeFromContext(c), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list contents")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list contents")
	}

	c.Set("X-Cache-Hit", strconv.FormatBool(result.CacheHit))

	meta := fiber.Map{
		"pagination": result.Meta,
		"filters":    result.Filters,
	}

	return utils.OK(c, result.Items, "contents retrieved", meta)
}

func (h *ContentHandler) create(c *fiber.Ctx) error {
	var payload dto.AddContentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	content, err := h.service.Add(c.Context(), scopeFromContext(c), payload)
	if err != nil {
		if isValidationError(err) || errors.Is(err, service.ErrOrganizationMismatch) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to create content")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create content")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "content created", content)
}

func (h *ContentHandler) remove(c *fiber.Ctx) error {
	contentID, err := parseContentID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result := h.service.Delete(c.Context(), scopeFromContext(c), contentID)
	if !result.OK {
		return utils.SendErrorWithData(c, mutationStatus(result.Reason), result.Message, result)
	}

	return utils.SendSuccess(c, "content deleted", result)
}

func (h *ContentHandler) duplicate(c *fiber.Ctx) error {
	contentID, err := parseContentID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result := h.service.Duplicate(c.Context(), scopeFromContext(c), contentID)
	if !result.OK {
		return utils.SendErrorWithData(c, mutationStatus(result.Reason), result.Message, result)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "content duplicated", result)
}

func (h *ContentHandler) listActivities(c *fiber.Ctx) error {
	contentID, err := parseContentID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.activities.ListForContent(c.Context(), scopeFromContext(c), contentID, dto.ContentActivityListRequest{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list content activities")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activities")
	}

	meta := fiber.Map{"pagination": result.Pagination}
	return utils.OK(c, result.Items, "content activities retrieved", meta)
}

func (h *ContentHandler) parseListRequest(c *fiber.Ctx) (dto.ContentListRequest, error) {
	pageIndex, err := parseQueryInt(c, "pageIndex")
	if err != nil {
		return dto.ContentListRequest{}, err
	}

	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return dto.ContentListRequest{}, err
	}

	return dto.ContentListRequest{
		PageIndex:     pageIndex,
		PageSize:      pageSize,
		Type:          c.Query("type"),
		SortBy:        c.Query("sortBy"),
		SortDirection: c.Query("sortDirection"),
		SearchQuery:   c.Query("searchQuery"),
	}, nil
}

func parseContentID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if err := uuid.Validate(id); err != nil {
		return "", errors.New("content id must be a valid uuid")
	}
	return id, nil
}

func mutationStatus(reason string) int {
	switch reason {
	case dto.MutationReasonNotFound:
		return fiber.StatusNotFound
	case dto.MutationReasonForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}
