package models

import "time"

type EntityCategory string

const (
	EntityCharacter   EntityCategory = "Character"
	EntityCorporation EntityCategory = "Corporation"
	EntityAlliance    EntityCategory = "Alliance"
)

func (c EntityCategory) Valid() bool {
	switch c {
	case EntityCharacter, EntityCorporation, EntityAlliance:
		return true
	}
	return false
}

// Entity is the target of a ban: a character, corporation or alliance,
// identified by its EVE id and display name.
type Entity struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	Category EntityCategory `json:"category"`
}

// BanState classifies a ban at a point in time. A ban starts Active and
// becomes Expired when its scheduled end passes, or Revoked when a moderator
// ends it early. Both terminal states are permanent.
type BanState int

const (
	BanActive BanState = iota
	BanExpired
	BanRevoked
)

func (s BanState) String() string {
	switch s {
	case BanActive:
		return "active"
	case BanExpired:
		return "expired"
	case BanRevoked:
		return "revoked"
	}
	return "unknown"
}

type Ban struct {
	ID           int64      `json:"id,string"`
	Entity       Entity     `json:"entity"`
	IssuedAt     time.Time  `json:"issued_at"`
	IssuedBy     int64      `json:"issued_by"`
	Reason       string     `json:"reason"`
	PublicReason *string    `json:"public_reason,omitempty"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
	RevokedBy    *int64     `json:"revoked_by,omitempty"`
}

// StateAt reports the ban's lifecycle state as of t. A nil RevokedAt means a
// permanent ban; a RevokedAt in the future means the ban has not yet run out.
// Once RevokedAt has passed, RevokedBy distinguishes a manual revocation from
// a natural expiry.
func (b *Ban) StateAt(t time.Time) BanState {
	if b.RevokedAt == nil || b.RevokedAt.After(t) {
		return BanActive
	}
	if b.RevokedBy != nil {
		return BanRevoked
	}
	return BanExpired
}

func (b *Ban) ActiveAt(t time.Time) bool {
	return b.StateAt(t) == BanActive
}

// BanWithIssuer decorates a ban with the issuing moderator's character row
// for list views.
type BanWithIssuer struct {
	Ban
	Issuer Character `json:"issuer"`
}
