package service

import (
	"context"
	"time"

	"github.com/zuiji/legacy-waitlist/internal/models"
	"github.com/zuiji/legacy-waitlist/internal/permissions"
)

// ListActive returns every ban still in force, in issue order, with the
// issuing moderator joined in.
func (s *BanService) ListActive(ctx context.Context, callerID int64) ([]models.BanWithIssuer, error) {
	if err := s.access.Require(ctx, callerID, permissions.AccessBansManage); err != nil {
		return nil, err
	}

	bans, err := s.bans.ListActive(ctx, time.Now())
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if bans == nil {
		bans = []models.BanWithIssuer{}
	}
	return bans, nil
}

// History returns every ban ever issued against an entity, newest first,
// including expired and revoked ones. Unknown entities get an empty list,
// not an error.
func (s *BanService) History(ctx context.Context, callerID int64, category models.EntityCategory, entityID int64) ([]models.Ban, error) {
	if err := s.access.Require(ctx, callerID, permissions.AccessBansManage); err != nil {
		return nil, err
	}

	if !category.Valid() {
		return nil, BadRequest("INVALID_CATEGORY", "category must be Character, Corporation or Alliance")
	}

	bans, err := s.bans.HistoryForEntity(ctx, category, entityID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if bans == nil {
		bans = []models.Ban{}
	}
	return bans, nil
}
