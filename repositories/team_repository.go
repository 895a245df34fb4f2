package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubpoint/bracket-system/models"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name already registered in this division")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	// ListByDivision returns the registration snapshot in stable
	// registration order.
	ListByDivision(ctx context.Context, divisionID int) ([]*models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (division_id, name, rating, seed_rank)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		team.DivisionID,
		team.Name,
		team.Rating,
		team.SeedRank,
	).Scan(&team.ID, &team.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "teams_division_id_name_key") {
			return ErrTeamNameConflict
		}
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT id, division_id, name, rating, seed_rank, created_at FROM teams WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.DivisionID,
		&team.Name,
		&team.Rating,
		&team.SeedRank,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team %d: %w", id, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) ListByDivision(ctx context.Context, divisionID int) ([]*models.Team, error) {
	query := `
		SELECT id, division_id, name, rating, seed_rank, created_at
		FROM teams
		WHERE division_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, divisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for division %d: %w", divisionID, err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team := &models.Team{}
		if err := rows.Scan(
			&team.ID,
			&team.DivisionID,
			&team.Name,
			&team.Rating,
			&team.SeedRank,
			&team.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}
