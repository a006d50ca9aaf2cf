package models

import "time"

// Admin is a staff grant. Membership in the admins table both unlocks the
// role's access keys and shields the character from being banned.
type Admin struct {
	CharacterID int64     `json:"character_id"`
	Role        string    `json:"role"`
	GrantedAt   time.Time `json:"granted_at"`
	GrantedBy   *int64    `json:"granted_by,omitempty"`
}
