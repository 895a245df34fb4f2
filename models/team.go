package models

import "time"

// Team is a registered participant unit within a division. For singles
// disciplines a "team" is one player; the bracket core does not distinguish.
type Team struct {
	ID         int       `json:"id" db:"id"`
	DivisionID int       `json:"division_id" db:"division_id"`
	Name       string    `json:"name" db:"name"`
	Rating     *float64  `json:"rating,omitempty" db:"rating"`
	SeedRank   *int      `json:"seed_rank,omitempty" db:"seed_rank"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
