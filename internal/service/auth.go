package service

import (
	"context"

	"github.com/zuiji/legacy-waitlist/internal/auth"
	"github.com/zuiji/legacy-waitlist/internal/database"
	"github.com/zuiji/legacy-waitlist/internal/esi"
	"github.com/zuiji/legacy-waitlist/internal/models"
	"github.com/zuiji/legacy-waitlist/internal/permissions"
	"github.com/zuiji/legacy-waitlist/internal/redis"
)

// SSO is the part of the ESI client the login flow needs.
type SSO interface {
	AuthorizeURL(redirectURI, state string) string
	ExchangeCode(ctx context.Context, code string) (*esi.Verified, error)
	GetCharacter(ctx context.Context, id int64) (*esi.CharacterInfo, error)
}

// AuthResult holds the tokens and character returned after a completed login.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	Character    models.Character
}

// RefreshResult holds the new token pair after a refresh.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

// WhoAmI describes the logged-in character, their staff role if any, and
// the access keys that role grants.
type WhoAmI struct {
	Character models.Character `json:"character"`
	Role      *string          `json:"role"`
	Access    []string         `json:"access"`
}

// AuthService handles the EVE SSO login round trip, token refresh, and logout.
type AuthService struct {
	characters  database.CharacterRepository
	sso         SSO
	tokens      *auth.TokenService
	redis       *redis.Client
	access      *AccessChecker
	redirectURI string
}

// NewAuthService creates an AuthService.
func NewAuthService(
	characters database.CharacterRepository,
	sso SSO,
	tokens *auth.TokenService,
	redis *redis.Client,
	access *AccessChecker,
	redirectURI string,
) *AuthService {
	return &AuthService{
		characters:  characters,
		sso:         sso,
		tokens:      tokens,
		redis:       redis,
		access:      access,
		redirectURI: redirectURI,
	}
}

// BeginLogin starts the SSO round trip: it mints a state nonce, records it,
// and returns the EVE login URL to redirect the browser to along with the
// nonce the callback must echo.
func (s *AuthService) BeginLogin(ctx context.Context) (url, state string, err error) {
	state, err = s.tokens.GenerateState()
	if err != nil {
		return "", "", Internal("INTERNAL", "internal server error")
	}
	if err := s.redis.StoreSSOState(ctx, state); err != nil {
		return "", "", Internal("INTERNAL", "internal server error")
	}
	return s.sso.AuthorizeURL(s.redirectURI, state), state, nil
}

// Callback completes the SSO round trip. The state nonce is single-use, so
// a replayed callback URL cannot open a second session.
func (s *AuthService) Callback(ctx context.Context, code, state string) (*AuthResult, error) {
	if code == "" || state == "" {
		return nil, BadRequest("MISSING_PARAMS", "code and state are required")
	}

	ok, err := s.redis.ConsumeSSOState(ctx, state)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if !ok {
		return nil, Unauthorized("INVALID_STATE", "login state is invalid or expired")
	}

	verified, err := s.sso.ExchangeCode(ctx, code)
	if err != nil {
		return nil, Unauthorized("SSO_REJECTED", "could not verify the login with EVE SSO")
	}

	char := &models.Character{
		ID:   verified.CharacterID,
		Name: verified.CharacterName,
	}
	// The corporation is nice to have; a failed sheet lookup should not
	// block the login.
	if info, err := s.sso.GetCharacter(ctx, verified.CharacterID); err == nil && info != nil {
		char.CorporationID = &info.CorporationID
	}

	if err := s.characters.Upsert(ctx, char); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	accessToken, err := s.tokens.GenerateAccessToken(char.ID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if err := s.redis.StoreRefreshToken(ctx, refreshToken, char.ID, s.tokens.RefreshExpiry()); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Character:    *char,
	}, nil
}

// Refresh rotates a refresh token and returns a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, BadRequest("MISSING_TOKEN", "refresh_token is required")
	}

	accountID, err := s.redis.GetRefreshTokenAccountID(ctx, refreshToken)
	if err != nil {
		return nil, Unauthorized("INVALID_TOKEN", "invalid or expired refresh token")
	}

	if err := s.redis.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	accessToken, err := s.tokens.GenerateAccessToken(accountID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	newRefresh, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	if err := s.redis.StoreRefreshToken(ctx, newRefresh, accountID, s.tokens.RefreshExpiry()); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	return &RefreshResult{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
	}, nil
}

// Logout deletes the given refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if refreshToken != "" {
		_ = s.redis.DeleteRefreshToken(ctx, refreshToken)
	}
}

// Identify returns the logged-in character, their staff role, and their
// granted access keys.
func (s *AuthService) Identify(ctx context.Context, accountID int64) (*WhoAmI, error) {
	char, err := s.characters.GetByID(ctx, accountID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if char == nil {
		return nil, Unauthorized("UNKNOWN_ACCOUNT", "account is not known, log in again")
	}

	out := &WhoAmI{Character: *char, Access: []string{}}

	admin, err := s.access.StaffRole(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if admin != nil {
		out.Role = &admin.Role
		if keys := permissions.ForRole(admin.Role).Keys(); keys != nil {
			out.Access = keys
		}
	}
	return out, nil
}
