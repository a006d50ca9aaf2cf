package database

import (
	"context"
	"time"

	"github.com/zuiji/legacy-waitlist/internal/models"
)

type CharacterRepository interface {
	Upsert(ctx context.Context, char *models.Character) error
	GetByID(ctx context.Context, id int64) (*models.Character, error)
}

type AdminRepository interface {
	GetByCharacterID(ctx context.Context, characterID int64) (*models.Admin, error)
	List(ctx context.Context) ([]models.Admin, error)
	Upsert(ctx context.Context, admin *models.Admin) error
	Delete(ctx context.Context, characterID int64) error
}

type BanRepository interface {
	Create(ctx context.Context, ban *models.Ban) error
	GetByID(ctx context.Context, id int64) (*models.Ban, error)
	ListActive(ctx context.Context, asOf time.Time) ([]models.BanWithIssuer, error)
	HistoryForEntity(ctx context.Context, category models.EntityCategory, entityID int64) ([]models.Ban, error)
	Update(ctx context.Context, ban *models.Ban) error
	RevokeActive(ctx context.Context, id int64, revokedAt time.Time, revokedBy int64) (bool, error)
}
