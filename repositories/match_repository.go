package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/clubpoint/bracket-system/models"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	// ErrMatchVersionConflict means the guarded update matched no row: the
	// caller's expected version is stale and it must re-fetch.
	ErrMatchVersionConflict = errors.New("match was modified concurrently")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// ListByBracket returns every match of a bracket in (round, position)
	// order. It accepts an executor so the progression engine can read a
	// consistent snapshot inside its transaction.
	ListByBracket(ctx context.Context, exec SQLExecutor, bracketID int) ([]*models.Match, error)
	// Update persists every mutable match field guarded by the version
	// counter, bumping match.Version on success.
	Update(ctx context.Context, exec SQLExecutor, match *models.Match, expectedVersion int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, bracket_id, round_id, position, stage,
	slot1_team_id, slot1_source_match_id, slot1_source_outcome, slot1_bye,
	slot2_team_id, slot2_source_match_id, slot2_source_outcome, slot2_bye,
	status, sets, winner_team_id, corrected, version, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	setsJSON, err := marshalSets(match.Sets)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO matches
			(bracket_id, round_id, position, stage,
			 slot1_team_id, slot1_source_match_id, slot1_source_outcome, slot1_bye,
			 slot2_team_id, slot2_source_match_id, slot2_source_outcome, slot2_bye,
			 status, sets, winner_team_id, corrected, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at`

	err = exec.QueryRowContext(ctx, query,
		match.BracketID,
		match.RoundID,
		match.Position,
		match.Stage,
		match.Slot1.TeamID,
		match.Slot1.SourceMatchID,
		match.Slot1.SourceOutcome,
		match.Slot1.Bye,
		match.Slot2.TeamID,
		match.Slot2.SourceMatchID,
		match.Slot2.SourceOutcome,
		match.Slot2.Bye,
		match.Status,
		setsJSON,
		match.WinnerID,
		match.Corrected,
		match.Version,
	).Scan(&match.ID, &match.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByBracket(ctx context.Context, exec SQLExecutor, bracketID int) ([]*models.Match, error) {
	if exec == nil {
		exec = r.db
	}
	query := `SELECT ` + matchColumns + ` FROM matches WHERE bracket_id = $1 ORDER BY round_id, position`

	rows, err := exec.QueryContext(ctx, query, bracketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for bracket %d: %w", bracketID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, match *models.Match, expectedVersion int) error {
	if exec == nil {
		exec = r.db
	}
	setsJSON, err := marshalSets(match.Sets)
	if err != nil {
		return err
	}

	query := `
		UPDATE matches
		SET slot1_team_id = $1, slot1_bye = $2,
		    slot2_team_id = $3, slot2_bye = $4,
		    status = $5, sets = $6, winner_team_id = $7, corrected = $8,
		    version = version + 1
		WHERE id = $9 AND version = $10`

	result, err := exec.ExecContext(ctx, query,
		match.Slot1.TeamID,
		match.Slot1.Bye,
		match.Slot2.TeamID,
		match.Slot2.Bye,
		match.Status,
		setsJSON,
		match.WinnerID,
		match.Corrected,
		match.ID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update match %d: %w", match.ID, err)
	}
	if err := checkAffectedRows(result, ErrMatchVersionConflict); err != nil {
		return err
	}
	match.Version = expectedVersion + 1
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	var setsJSON []byte
	err := row.Scan(
		&match.ID,
		&match.BracketID,
		&match.RoundID,
		&match.Position,
		&match.Stage,
		&match.Slot1.TeamID,
		&match.Slot1.SourceMatchID,
		&match.Slot1.SourceOutcome,
		&match.Slot1.Bye,
		&match.Slot2.TeamID,
		&match.Slot2.SourceMatchID,
		&match.Slot2.SourceOutcome,
		&match.Slot2.Bye,
		&match.Status,
		&setsJSON,
		&match.WinnerID,
		&match.Corrected,
		&match.Version,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(setsJSON) > 0 {
		if err := json.Unmarshal(setsJSON, &match.Sets); err != nil {
			return nil, fmt.Errorf("failed to decode sets for match %d: %w", match.ID, err)
		}
	}
	return match, nil
}

func marshalSets(sets []models.Set) ([]byte, error) {
	if sets == nil {
		sets = []models.Set{}
	}
	data, err := json.Marshal(sets)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sets: %w", err)
	}
	return data, nil
}
