package models

import "time"

type Character struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	CorporationID *int64    `json:"corporation_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
