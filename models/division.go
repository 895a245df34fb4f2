package models

import "time"

// DivisionStatus is the division lifecycle.
//
//	registration: roster open, no bracket yet
//	active:       bracket generated and locked, matches in play
//	completed:    every bracket match finalized
type DivisionStatus string

const (
	DivisionStatusRegistration DivisionStatus = "registration"
	DivisionStatusActive       DivisionStatus = "active"
	DivisionStatusCompleted    DivisionStatus = "completed"
)

// Division is one competition category. Format and settings are fixed at
// creation; the bracket is generated from them exactly once.
type Division struct {
	ID           int            `json:"id" db:"id"`
	Name         string         `json:"name" db:"name"`
	Discipline   string         `json:"discipline" db:"discipline"`
	Format       BracketFormat  `json:"format" db:"format"`
	Status       DivisionStatus `json:"status" db:"status"`
	SettingsJSON *string        `json:"settings_json,omitempty" db:"settings_json"`
	LogoKey      *string        `json:"-" db:"logo_key"`
	LogoURL      *string        `json:"logo_url,omitempty" db:"-"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}
