package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubpoint/bracket-system/models"
)

var (
	ErrDivisionNotFound     = errors.New("division not found")
	ErrDivisionNameConflict = errors.New("division name already in use")
)

type DivisionRepository interface {
	Create(ctx context.Context, division *models.Division) error
	GetByID(ctx context.Context, id int) (*models.Division, error)
	List(ctx context.Context, limit, offset int) ([]*models.Division, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.DivisionStatus) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
}

type postgresDivisionRepository struct {
	db *sql.DB
}

func NewPostgresDivisionRepository(db *sql.DB) DivisionRepository {
	return &postgresDivisionRepository{db: db}
}

const divisionColumns = `id, name, discipline, format, status, settings_json, logo_key, created_at`

func (r *postgresDivisionRepository) Create(ctx context.Context, division *models.Division) error {
	query := `
		INSERT INTO divisions (name, discipline, format, status, settings_json)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		division.Name,
		division.Discipline,
		division.Format,
		division.Status,
		division.SettingsJSON,
	).Scan(&division.ID, &division.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "divisions_name_key") {
			return ErrDivisionNameConflict
		}
		return fmt.Errorf("failed to insert division: %w", err)
	}
	return nil
}

func (r *postgresDivisionRepository) GetByID(ctx context.Context, id int) (*models.Division, error) {
	query := `SELECT ` + divisionColumns + ` FROM divisions WHERE id = $1`

	division := &models.Division{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&division.ID,
		&division.Name,
		&division.Discipline,
		&division.Format,
		&division.Status,
		&division.SettingsJSON,
		&division.LogoKey,
		&division.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDivisionNotFound
		}
		return nil, fmt.Errorf("failed to scan division %d: %w", id, err)
	}
	return division, nil
}

func (r *postgresDivisionRepository) List(ctx context.Context, limit, offset int) ([]*models.Division, error) {
	query := `SELECT ` + divisionColumns + ` FROM divisions ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list divisions: %w", err)
	}
	defer rows.Close()

	divisions := make([]*models.Division, 0)
	for rows.Next() {
		division := &models.Division{}
		if err := rows.Scan(
			&division.ID,
			&division.Name,
			&division.Discipline,
			&division.Format,
			&division.Status,
			&division.SettingsJSON,
			&division.LogoKey,
			&division.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan division row: %w", err)
		}
		divisions = append(divisions, division)
	}
	return divisions, rows.Err()
}

func (r *postgresDivisionRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.DivisionStatus) error {
	result, err := exec.ExecContext(ctx, `UPDATE divisions SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update division %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrDivisionNotFound)
}

func (r *postgresDivisionRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE divisions SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update division %d logo key: %w", id, err)
	}
	return checkAffectedRows(result, ErrDivisionNotFound)
}
