package models

// Standing is a derived ranking row for one team, recomputed on read from
// finalized matches. It is never stored authoritatively.
type Standing struct {
	TeamID        int    `json:"team_id"`
	TeamName      string `json:"team_name,omitempty"`
	Points        int    `json:"points"`
	MatchesPlayed int    `json:"matches_played"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	SetsFor       int    `json:"sets_for"`
	SetsAgainst   int    `json:"sets_against"`
	SetDifference int    `json:"set_difference"`
	Rank          int    `json:"rank"`
}
