package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zuiji/legacy-waitlist/internal/models"
)

type banRepo struct {
	pool *pgxpool.Pool
}

func NewBanRepository(pool *pgxpool.Pool) BanRepository {
	return &banRepo{pool: pool}
}

func (r *banRepo) Create(ctx context.Context, ban *models.Ban) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO bans (id, entity_id, entity_name, entity_category, issued_at,
		                   issued_by, reason, public_reason, revoked_at, revoked_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		ban.ID, ban.Entity.ID, ban.Entity.Name, ban.Entity.Category, ban.IssuedAt,
		ban.IssuedBy, ban.Reason, ban.PublicReason, ban.RevokedAt, ban.RevokedBy,
	)
	return err
}

func (r *banRepo) GetByID(ctx context.Context, id int64) (*models.Ban, error) {
	ban := &models.Ban{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, entity_id, entity_name, entity_category, issued_at,
		        issued_by, reason, public_reason, revoked_at, revoked_by
		 FROM bans WHERE id = $1`, id,
	).Scan(
		&ban.ID, &ban.Entity.ID, &ban.Entity.Name, &ban.Entity.Category, &ban.IssuedAt,
		&ban.IssuedBy, &ban.Reason, &ban.PublicReason, &ban.RevokedAt, &ban.RevokedBy,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return ban, err
}

func (r *banRepo) ListActive(ctx context.Context, asOf time.Time) ([]models.BanWithIssuer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT b.id, b.entity_id, b.entity_name, b.entity_category, b.issued_at,
		        b.issued_by, b.reason, b.public_reason, b.revoked_at, b.revoked_by,
		        c.id, c.name, c.corporation_id, c.created_at
		 FROM bans b
		 JOIN characters c ON c.id = b.issued_by
		 WHERE b.revoked_at IS NULL OR b.revoked_at > $1
		 ORDER BY b.id`, asOf,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bans []models.BanWithIssuer
	for rows.Next() {
		var b models.BanWithIssuer
		if err := rows.Scan(
			&b.ID, &b.Entity.ID, &b.Entity.Name, &b.Entity.Category, &b.IssuedAt,
			&b.IssuedBy, &b.Reason, &b.PublicReason, &b.RevokedAt, &b.RevokedBy,
			&b.Issuer.ID, &b.Issuer.Name, &b.Issuer.CorporationID, &b.Issuer.CreatedAt,
		); err != nil {
			return nil, err
		}
		bans = append(bans, b)
	}
	return bans, rows.Err()
}

func (r *banRepo) HistoryForEntity(ctx context.Context, category models.EntityCategory, entityID int64) ([]models.Ban, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, entity_id, entity_name, entity_category, issued_at,
		        issued_by, reason, public_reason, revoked_at, revoked_by
		 FROM bans WHERE entity_category = $1 AND entity_id = $2
		 ORDER BY issued_at DESC`, category, entityID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bans []models.Ban
	for rows.Next() {
		var ban models.Ban
		if err := rows.Scan(
			&ban.ID, &ban.Entity.ID, &ban.Entity.Name, &ban.Entity.Category, &ban.IssuedAt,
			&ban.IssuedBy, &ban.Reason, &ban.PublicReason, &ban.RevokedAt, &ban.RevokedBy,
		); err != nil {
			return nil, err
		}
		bans = append(bans, ban)
	}
	return bans, rows.Err()
}

func (r *banRepo) Update(ctx context.Context, ban *models.Ban) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE bans
		 SET entity_id = $2, entity_name = $3, entity_category = $4, issued_at = $5,
		     issued_by = $6, reason = $7, public_reason = $8, revoked_at = $9, revoked_by = $10
		 WHERE id = $1`,
		ban.ID, ban.Entity.ID, ban.Entity.Name, ban.Entity.Category, ban.IssuedAt,
		ban.IssuedBy, ban.Reason, ban.PublicReason, ban.RevokedAt, ban.RevokedBy,
	)
	return err
}

// RevokeActive stamps a revocation on the ban only while it is still active
// at revokedAt. The WHERE clause makes the check-and-set a single atomic
// statement, so two racing revokes cannot both win. Returns false when the
// ban had already ended and the row was left untouched.
func (r *banRepo) RevokeActive(ctx context.Context, id int64, revokedAt time.Time, revokedBy int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bans SET revoked_at = $2, revoked_by = $3
		 WHERE id = $1 AND (revoked_at IS NULL OR revoked_at > $2)`,
		id, revokedAt, revokedBy,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
