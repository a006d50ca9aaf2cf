package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zuiji/legacy-waitlist/internal/models"
)

type adminRepo struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepo{pool: pool}
}

func (r *adminRepo) GetByCharacterID(ctx context.Context, characterID int64) (*models.Admin, error) {
	a := &models.Admin{}
	err := r.pool.QueryRow(ctx,
		`SELECT character_id, role, granted_at, granted_by
		 FROM admins WHERE character_id = $1`, characterID,
	).Scan(&a.CharacterID, &a.Role, &a.GrantedAt, &a.GrantedBy)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *adminRepo) List(ctx context.Context) ([]models.Admin, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT character_id, role, granted_at, granted_by
		 FROM admins ORDER BY granted_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []models.Admin
	for rows.Next() {
		var a models.Admin
		if err := rows.Scan(&a.CharacterID, &a.Role, &a.GrantedAt, &a.GrantedBy); err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

func (r *adminRepo) Upsert(ctx context.Context, admin *models.Admin) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO admins (character_id, role, granted_by)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (character_id) DO UPDATE
		 SET role = EXCLUDED.role, granted_by = EXCLUDED.granted_by`,
		admin.CharacterID, admin.Role, admin.GrantedBy,
	)
	return err
}

func (r *adminRepo) Delete(ctx context.Context, characterID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM admins WHERE character_id = $1`, characterID)
	return err
}
