package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/zuiji/legacy-waitlist/internal/auth"
	"github.com/zuiji/legacy-waitlist/internal/models"
	"github.com/zuiji/legacy-waitlist/internal/service"
)

// AuthHandler handles the EVE SSO login endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

type loginResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// Login handles GET /auth/login. It returns the EVE SSO URL the browser
// should be sent to.
func (h *AuthHandler) Login(c echo.Context) error {
	url, state, err := h.service.BeginLogin(c.Request().Context())
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, loginResponse{URL: url, State: state})
}

type authResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	Character    models.Character `json:"character"`
}

// Callback handles GET /auth/callback?code=&state= after EVE SSO redirects
// the browser back.
func (h *AuthHandler) Callback(c echo.Context) error {
	code := c.QueryParam("code")
	state := c.QueryParam("state")

	result, err := h.service.Callback(c.Request().Context(), code, state)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, authResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Character:    result.Character,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	result, err := h.service.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, refreshResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	h.service.Logout(c.Request().Context(), req.RefreshToken)

	return c.NoContent(http.StatusNoContent)
}

// WhoAmI handles GET /auth/whoami.
func (h *AuthHandler) WhoAmI(c echo.Context) error {
	accountID := auth.GetAccountID(c)

	identity, err := h.service.Identify(c.Request().Context(), accountID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, identity)
}
