package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zuiji/legacy-waitlist/internal/database"
	"github.com/zuiji/legacy-waitlist/internal/esi"
	"github.com/zuiji/legacy-waitlist/internal/models"
	"github.com/zuiji/legacy-waitlist/internal/permissions"
	"github.com/zuiji/legacy-waitlist/internal/snowflake"
)

// downtime shifts a scheduled ban end from midnight UTC onto the daily
// 11:00 UTC server restart, so bans lapse across downtime rather than
// mid-play.
const downtime = 11 * time.Hour

// BanService handles the ban lifecycle: issuing, amending and revoking.
type BanService struct {
	bans       database.BanRepository
	characters database.CharacterRepository
	admins     database.AdminRepository
	resolver   esi.NameResolver
	snowflake  *snowflake.Generator
	access     *AccessChecker
}

// NewBanService creates a BanService.
func NewBanService(
	bans database.BanRepository,
	characters database.CharacterRepository,
	admins database.AdminRepository,
	resolver esi.NameResolver,
	sf *snowflake.Generator,
	access *AccessChecker,
) *BanService {
	return &BanService{
		bans:       bans,
		characters: characters,
		admins:     admins,
		resolver:   resolver,
		snowflake:  sf,
		access:     access,
	}
}

// scheduledEnd turns a caller-supplied end day (epoch seconds at midnight
// UTC) into the stored end instant. nil means a permanent ban.
func scheduledEnd(endDay *int64) *time.Time {
	if endDay == nil {
		return nil
	}
	t := time.Unix(*endDay, 0).UTC().Add(downtime)
	return &t
}

// Create issues a new ban against an entity. The entity's name is resolved
// from ESI rather than trusted from the caller, and staff characters cannot
// be banned.
func (s *BanService) Create(ctx context.Context, callerID int64, entityID int64, category models.EntityCategory, reason string, publicReason *string, endDay *int64) (*models.Ban, error) {
	if err := s.access.Require(ctx, callerID, permissions.AccessBansManage); err != nil {
		return nil, err
	}

	if !category.Valid() {
		return nil, BadRequest("INVALID_CATEGORY", "category must be Character, Corporation or Alliance")
	}

	name, err := s.resolver.ResolveName(ctx, category, entityID)
	if err != nil {
		if esi.IsNotFound(err) {
			return nil, BadRequest("UNKNOWN_ENTITY",
				fmt.Sprintf("no %s with id %d", strings.ToLower(string(category)), entityID))
		}
		return nil, Dependency("ESI_UNAVAILABLE", "could not resolve the entity name, try again later")
	}

	admin, err := s.admins.GetByCharacterID(ctx, entityID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if admin != nil {
		return nil, Forbidden("POLICY_VIOLATION",
			fmt.Sprintf("%s accounts cannot be banned", admin.Role))
	}

	ban := &models.Ban{
		ID: s.snowflake.Generate().Int64(),
		Entity: models.Entity{
			ID:       entityID,
			Name:     name,
			Category: category,
		},
		IssuedAt:     time.Now(),
		IssuedBy:     callerID,
		Reason:       reason,
		PublicReason: publicReason,
		RevokedAt:    scheduledEnd(endDay),
	}

	if err := s.bans.Create(ctx, ban); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return ban, nil
}

// Amend re-issues an active ban with new terms. The amendment replaces the
// reason, public reason and scheduled end wholesale, and re-stamps the ban
// with the amending moderator and the current time.
func (s *BanService) Amend(ctx context.Context, callerID int64, banID int64, reason string, publicReason *string, endDay *int64) (*models.Ban, error) {
	if err := s.access.Require(ctx, callerID, permissions.AccessBansManage); err != nil {
		return nil, err
	}

	ban, err := s.bans.GetByID(ctx, banID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if ban == nil {
		return nil, NotFound("NOT_FOUND", fmt.Sprintf("no ban with id %d", banID))
	}

	now := time.Now()
	if !ban.ActiveAt(now) {
		return nil, Conflict("BAN_NOT_ACTIVE", "only active bans can be amended")
	}

	ban.Reason = reason
	ban.PublicReason = publicReason
	ban.RevokedAt = scheduledEnd(endDay)
	ban.RevokedBy = nil
	ban.IssuedAt = now
	ban.IssuedBy = callerID

	if err := s.bans.Update(ctx, ban); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return ban, nil
}

// Revoke ends an active ban now, attributed to the caller. The revocation
// is a single conditional update, so when two moderators race only one
// attribution sticks; the loser gets a conflict naming whoever won.
func (s *BanService) Revoke(ctx context.Context, callerID int64, banID int64) error {
	if err := s.access.Require(ctx, callerID, permissions.AccessBansManage); err != nil {
		return err
	}

	now := time.Now()
	ok, err := s.bans.RevokeActive(ctx, banID, now, callerID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if ok {
		return nil
	}

	// The update matched no row: the ban is missing, expired, or someone
	// else revoked it first. Re-read to find out which.
	ban, err := s.bans.GetByID(ctx, banID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if ban == nil {
		return NotFound("NOT_FOUND", fmt.Sprintf("no ban with id %d", banID))
	}

	if ban.RevokedBy == nil {
		return Conflict("ALREADY_EXPIRED", "cannot revoke the ban as it has already expired")
	}

	name := fmt.Sprintf("character %d", *ban.RevokedBy)
	if revoker, err := s.characters.GetByID(ctx, *ban.RevokedBy); err == nil && revoker != nil {
		name = revoker.Name
	}
	return Conflict("ALREADY_REVOKED", fmt.Sprintf("%s has already revoked this ban", name))
}
