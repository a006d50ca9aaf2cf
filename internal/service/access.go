package service

import (
	"context"

	"github.com/zuiji/legacy-waitlist/internal/database"
	"github.com/zuiji/legacy-waitlist/internal/models"
	"github.com/zuiji/legacy-waitlist/internal/permissions"
)

// AccessChecker resolves a character's staff role into its access keys.
type AccessChecker struct {
	admins database.AdminRepository
}

// NewAccessChecker creates an AccessChecker.
func NewAccessChecker(admins database.AdminRepository) *AccessChecker {
	return &AccessChecker{admins: admins}
}

// Require checks that the character's staff role carries the given access.
// Characters without a staff row, and roles missing the key, are both
// rejected the same way so callers cannot probe who is staff.
func (a *AccessChecker) Require(ctx context.Context, characterID int64, access permissions.Access) error {
	admin, err := a.admins.GetByCharacterID(ctx, characterID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if admin == nil {
		return Unauthorized("ACCESS_DENIED", "access denied")
	}
	if !permissions.ForRole(admin.Role).Has(access) {
		return Unauthorized("ACCESS_DENIED", "access denied")
	}
	return nil
}

// AccessFor returns the character's granted access set, zero when the
// character holds no staff role.
func (a *AccessChecker) AccessFor(ctx context.Context, characterID int64) (permissions.Access, error) {
	admin, err := a.admins.GetByCharacterID(ctx, characterID)
	if err != nil {
		return 0, Internal("INTERNAL", "internal server error")
	}
	if admin == nil {
		return 0, nil
	}
	return permissions.ForRole(admin.Role), nil
}

// StaffRole returns the character's staff row, nil when the character is
// not staff.
func (a *AccessChecker) StaffRole(ctx context.Context, characterID int64) (*models.Admin, error) {
	admin, err := a.admins.GetByCharacterID(ctx, characterID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return admin, nil
}
