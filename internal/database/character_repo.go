package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zuiji/legacy-waitlist/internal/models"
)

type characterRepo struct {
	pool *pgxpool.Pool
}

func NewCharacterRepository(pool *pgxpool.Pool) CharacterRepository {
	return &characterRepo{pool: pool}
}

// Upsert refreshes the character row on every login; names and corporations
// change over time on the ESI side.
func (r *characterRepo) Upsert(ctx context.Context, char *models.Character) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO characters (id, name, corporation_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, corporation_id = EXCLUDED.corporation_id`,
		char.ID, char.Name, char.CorporationID,
	)
	return err
}

func (r *characterRepo) GetByID(ctx context.Context, id int64) (*models.Character, error) {
	c := &models.Character{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, corporation_id, created_at
		 FROM characters WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.CorporationID, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return c, err
}
