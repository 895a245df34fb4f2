package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubpoint/bracket-system/models"
)

var (
	ErrBracketNotFound = errors.New("bracket not found")
	// ErrBracketExists is raised by the unique division constraint, which
	// is what makes concurrent generation yield exactly one winner.
	ErrBracketExists = errors.New("bracket already exists for this division")
)

type BracketRepository interface {
	Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
	GetByID(ctx context.Context, id int) (*models.Bracket, error)
	GetByDivision(ctx context.Context, divisionID int) (*models.Bracket, error)
	CreateRound(ctx context.Context, exec SQLExecutor, round *models.Round) error
	ListRounds(ctx context.Context, bracketID int) ([]*models.Round, error)
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error {
	query := `
		INSERT INTO brackets (division_id, format, lock_state)
		VALUES ($1, $2, $3)
		RETURNING id, generated_at`

	err := exec.QueryRowContext(ctx, query,
		bracket.DivisionID,
		bracket.Format,
		bracket.LockState,
	).Scan(&bracket.ID, &bracket.GeneratedAt)

	if err != nil {
		if isUniqueViolation(err, "brackets_division_id_key") {
			return ErrBracketExists
		}
		return fmt.Errorf("failed to insert bracket: %w", err)
	}
	return nil
}

func (r *postgresBracketRepository) GetByID(ctx context.Context, id int) (*models.Bracket, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *postgresBracketRepository) GetByDivision(ctx context.Context, divisionID int) (*models.Bracket, error) {
	return r.getOne(ctx, `WHERE division_id = $1`, divisionID)
}

func (r *postgresBracketRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.Bracket, error) {
	query := `SELECT id, division_id, format, lock_state, generated_at FROM brackets ` + where

	bracket := &models.Bracket{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&bracket.ID,
		&bracket.DivisionID,
		&bracket.Format,
		&bracket.LockState,
		&bracket.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket: %w", err)
	}
	return bracket, nil
}

func (r *postgresBracketRepository) CreateRound(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	query := `
		INSERT INTO rounds (bracket_id, number, label)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := exec.QueryRowContext(ctx, query,
		round.BracketID,
		round.Number,
		round.Label,
	).Scan(&round.ID)
	if err != nil {
		return fmt.Errorf("failed to insert round %d: %w", round.Number, err)
	}
	return nil
}

func (r *postgresBracketRepository) ListRounds(ctx context.Context, bracketID int) ([]*models.Round, error) {
	query := `SELECT id, bracket_id, number, label FROM rounds WHERE bracket_id = $1 ORDER BY number`

	rows, err := r.db.QueryContext(ctx, query, bracketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds for bracket %d: %w", bracketID, err)
	}
	defer rows.Close()

	rounds := make([]*models.Round, 0)
	for rows.Next() {
		round := &models.Round{}
		if err := rows.Scan(&round.ID, &round.BracketID, &round.Number, &round.Label); err != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", err)
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}
