package api

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/zuiji/legacy-waitlist/internal/esi"
	"github.com/zuiji/legacy-waitlist/internal/models"
	"github.com/zuiji/legacy-waitlist/internal/snowflake"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func newTestContext(method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func setAuthUser(c echo.Context, accountID int64) {
	c.Set("account_id", accountID)
}

func testSnowflake() *snowflake.Generator {
	sf, _ := snowflake.NewGenerator(1)
	return sf
}

// ---------------------------------------------------------------------------
// Mock repositories
// ---------------------------------------------------------------------------

// mockCharacterRepo implements database.CharacterRepository.
type mockCharacterRepo struct {
	UpsertFn  func(ctx context.Context, char *models.Character) error
	GetByIDFn func(ctx context.Context, id int64) (*models.Character, error)
}

func (m *mockCharacterRepo) Upsert(ctx context.Context, char *models.Character) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, char)
	}
	return nil
}

func (m *mockCharacterRepo) GetByID(ctx context.Context, id int64) (*models.Character, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

// mockAdminRepo implements database.AdminRepository.
type mockAdminRepo struct {
	GetByCharacterIDFn func(ctx context.Context, characterID int64) (*models.Admin, error)
	ListFn             func(ctx context.Context) ([]models.Admin, error)
	UpsertFn           func(ctx context.Context, admin *models.Admin) error
	DeleteFn           func(ctx context.Context, characterID int64) error
}

func (m *mockAdminRepo) GetByCharacterID(ctx context.Context, characterID int64) (*models.Admin, error) {
	if m.GetByCharacterIDFn != nil {
		return m.GetByCharacterIDFn(ctx, characterID)
	}
	return nil, nil
}

func (m *mockAdminRepo) List(ctx context.Context) ([]models.Admin, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *mockAdminRepo) Upsert(ctx context.Context, admin *models.Admin) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, admin)
	}
	return nil
}

func (m *mockAdminRepo) Delete(ctx context.Context, characterID int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, characterID)
	}
	return nil
}

// staffAdminRepo is a mockAdminRepo that reports the given characters as
// staff with the given role.
func staffAdminRepo(role string, characterIDs ...int64) *mockAdminRepo {
	return &mockAdminRepo{
		GetByCharacterIDFn: func(ctx context.Context, characterID int64) (*models.Admin, error) {
			for _, id := range characterIDs {
				if id == characterID {
					return &models.Admin{CharacterID: characterID, Role: role}, nil
				}
			}
			return nil, nil
		},
	}
}

// mockBanRepo implements database.BanRepository.
type mockBanRepo struct {
	CreateFn           func(ctx context.Context, ban *models.Ban) error
	GetByIDFn          func(ctx context.Context, id int64) (*models.Ban, error)
	ListActiveFn       func(ctx context.Context, asOf time.Time) ([]models.BanWithIssuer, error)
	HistoryForEntityFn func(ctx context.Context, category models.EntityCategory, entityID int64) ([]models.Ban, error)
	UpdateFn           func(ctx context.Context, ban *models.Ban) error
	RevokeActiveFn     func(ctx context.Context, id int64, revokedAt time.Time, revokedBy int64) (bool, error)
}

func (m *mockBanRepo) Create(ctx context.Context, ban *models.Ban) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, ban)
	}
	return nil
}

func (m *mockBanRepo) GetByID(ctx context.Context, id int64) (*models.Ban, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockBanRepo) ListActive(ctx context.Context, asOf time.Time) ([]models.BanWithIssuer, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx, asOf)
	}
	return nil, nil
}

func (m *mockBanRepo) HistoryForEntity(ctx context.Context, category models.EntityCategory, entityID int64) ([]models.Ban, error) {
	if m.HistoryForEntityFn != nil {
		return m.HistoryForEntityFn(ctx, category, entityID)
	}
	return nil, nil
}

func (m *mockBanRepo) Update(ctx context.Context, ban *models.Ban) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, ban)
	}
	return nil
}

func (m *mockBanRepo) RevokeActive(ctx context.Context, id int64, revokedAt time.Time, revokedBy int64) (bool, error) {
	if m.RevokeActiveFn != nil {
		return m.RevokeActiveFn(ctx, id, revokedAt, revokedBy)
	}
	return false, nil
}

// ---------------------------------------------------------------------------
// Mock ESI
// ---------------------------------------------------------------------------

// mockResolver implements esi.NameResolver.
type mockResolver struct {
	ResolveNameFn func(ctx context.Context, category models.EntityCategory, id int64) (string, error)
}

func (m *mockResolver) ResolveName(ctx context.Context, category models.EntityCategory, id int64) (string, error) {
	if m.ResolveNameFn != nil {
		return m.ResolveNameFn(ctx, category, id)
	}
	return "Resolved Name", nil
}

// mockSSO implements service.SSO.
type mockSSO struct {
	AuthorizeURLFn func(redirectURI, state string) string
	ExchangeCodeFn func(ctx context.Context, code string) (*esi.Verified, error)
	GetCharacterFn func(ctx context.Context, id int64) (*esi.CharacterInfo, error)
}

func (m *mockSSO) AuthorizeURL(redirectURI, state string) string {
	if m.AuthorizeURLFn != nil {
		return m.AuthorizeURLFn(redirectURI, state)
	}
	return "https://login.example.com/authorize?state=" + state
}

func (m *mockSSO) ExchangeCode(ctx context.Context, code string) (*esi.Verified, error) {
	if m.ExchangeCodeFn != nil {
		return m.ExchangeCodeFn(ctx, code)
	}
	return &esi.Verified{CharacterID: 1, CharacterName: "Test Pilot"}, nil
}

func (m *mockSSO) GetCharacter(ctx context.Context, id int64) (*esi.CharacterInfo, error) {
	if m.GetCharacterFn != nil {
		return m.GetCharacterFn(ctx, id)
	}
	return nil, errors.New("no character sheet")
}
