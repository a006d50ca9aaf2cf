package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/zuiji/legacy-waitlist/internal/auth"
	"github.com/zuiji/legacy-waitlist/internal/models"
	"github.com/zuiji/legacy-waitlist/internal/service"
)

// BanHandler handles ban endpoints.
type BanHandler struct {
	service *service.BanService
}

// NewBanHandler creates a BanHandler.
func NewBanHandler(svc *service.BanService) *BanHandler {
	return &BanHandler{service: svc}
}

type banEntityRequest struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
}

type createBanRequest struct {
	Entity       *banEntityRequest `json:"entity"`
	Reason       string            `json:"reason"`
	PublicReason *string           `json:"public_reason"`
	// RevokedAt is the scheduled end day in epoch seconds; the server
	// shifts it onto the daily downtime. Absent means permanent.
	RevokedAt *int64 `json:"revoked_at"`
}

// CreateBan handles POST /api/v1/bans.
func (h *BanHandler) CreateBan(c echo.Context) error {
	accountID := auth.GetAccountID(c)

	var req createBanRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	if req.Entity == nil || req.Entity.ID == 0 || req.Reason == "" {
		return Error(c, http.StatusBadRequest, "MISSING_PARAMS", "entity id, entity category and reason are required")
	}

	_, err := h.service.Create(
		c.Request().Context(),
		accountID,
		req.Entity.ID,
		models.EntityCategory(req.Entity.Category),
		req.Reason,
		req.PublicReason,
		req.RevokedAt,
	)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListBans handles GET /api/v1/bans.
func (h *BanHandler) ListBans(c echo.Context) error {
	accountID := auth.GetAccountID(c)

	bans, err := h.service.ListActive(c.Request().Context(), accountID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, bans)
}

// BanHistory handles GET /api/v1/bans/history?category=&id=.
func (h *BanHandler) BanHistory(c echo.Context) error {
	accountID := auth.GetAccountID(c)

	category := c.QueryParam("category")
	if category == "" {
		return Error(c, http.StatusBadRequest, "MISSING_PARAMS", "category and id query parameters are required")
	}
	entityID, err := strconv.ParseInt(c.QueryParam("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid entity ID")
	}

	bans, err := h.service.History(c.Request().Context(), accountID, models.EntityCategory(category), entityID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, bans)
}

type amendBanRequest struct {
	Reason       string  `json:"reason"`
	PublicReason *string `json:"public_reason"`
	RevokedAt    *int64  `json:"revoked_at"`
}

// AmendBan handles PATCH /api/v1/bans/:id.
func (h *BanHandler) AmendBan(c echo.Context) error {
	banID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid ban ID")
	}

	accountID := auth.GetAccountID(c)

	var req amendBanRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	if req.Reason == "" {
		return Error(c, http.StatusBadRequest, "MISSING_PARAMS", "reason is required")
	}

	ban, err := h.service.Amend(c.Request().Context(), accountID, banID, req.Reason, req.PublicReason, req.RevokedAt)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, ban)
}

// RevokeBan handles DELETE /api/v1/bans/:id.
func (h *BanHandler) RevokeBan(c echo.Context) error {
	banID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid ban ID")
	}

	accountID := auth.GetAccountID(c)

	if err := h.service.Revoke(c.Request().Context(), accountID, banID); err != nil {
		return mapServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
