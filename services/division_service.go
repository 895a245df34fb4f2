package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/clubpoint/bracket-system/models"
	"github.com/clubpoint/bracket-system/repositories"
	"github.com/clubpoint/bracket-system/storage"
)

type CreateDivisionInput struct {
	Name         string               `json:"name"`
	Discipline   string               `json:"discipline"`
	Format       models.BracketFormat `json:"format"`
	SettingsJSON *string              `json:"settings_json,omitempty"`
}

type RegisterTeamInput struct {
	Name     string   `json:"name"`
	Rating   *float64 `json:"rating,omitempty"`
	SeedRank *int     `json:"seed_rank,omitempty"`
}

type DivisionService interface {
	Create(ctx context.Context, input CreateDivisionInput) (*models.Division, error)
	GetByID(ctx context.Context, id int) (*models.Division, error)
	List(ctx context.Context, limit, offset int) ([]*models.Division, error)
	RegisterTeam(ctx context.Context, divisionID int, input RegisterTeamInput) (*models.Team, error)
	ListTeams(ctx context.Context, divisionID int) ([]*models.Team, error)
	UploadLogo(ctx context.Context, divisionID int, contentType string, file io.Reader) (*models.Division, error)
	RemoveLogo(ctx context.Context, divisionID int) error
}

type divisionService struct {
	divisionRepo repositories.DivisionRepository
	teamRepo     repositories.TeamRepository
	bracketRepo  repositories.BracketRepository
	uploader     storage.FileUploader
}

func NewDivisionService(
	divisionRepo repositories.DivisionRepository,
	teamRepo repositories.TeamRepository,
	bracketRepo repositories.BracketRepository,
	uploader storage.FileUploader,
) DivisionService {
	return &divisionService{
		divisionRepo: divisionRepo,
		teamRepo:     teamRepo,
		bracketRepo:  bracketRepo,
		uploader:     uploader,
	}
}

func (s *divisionService) Create(ctx context.Context, input CreateDivisionInput) (*models.Division, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrDivisionNameRequired
	}
	if !input.Format.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrDivisionInvalidFormat, input.Format)
	}

	division := &models.Division{
		Name:         name,
		Discipline:   strings.TrimSpace(input.Discipline),
		Format:       input.Format,
		Status:       models.DivisionStatusRegistration,
		SettingsJSON: input.SettingsJSON,
	}
	if err := s.divisionRepo.Create(ctx, division); err != nil {
		if errors.Is(err, repositories.ErrDivisionNameConflict) {
			return nil, ErrDivisionNameConflict
		}
		return nil, err
	}
	return division, nil
}

func (s *divisionService) GetByID(ctx context.Context, id int) (*models.Division, error) {
	division, err := s.divisionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrDivisionNotFound) {
			return nil, ErrDivisionNotFound
		}
		return nil, err
	}
	s.populateLogoURL(division)
	return division, nil
}

func (s *divisionService) List(ctx context.Context, limit, offset int) ([]*models.Division, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	divisions, err := s.divisionRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, d := range divisions {
		s.populateLogoURL(d)
	}
	return divisions, nil
}

func (s *divisionService) RegisterTeam(ctx context.Context, divisionID int, input RegisterTeamInput) (*models.Team, error) {
	division, err := s.GetByID(ctx, divisionID)
	if err != nil {
		return nil, err
	}
	if division.Status != models.DivisionStatusRegistration {
		return nil, ErrRegistrationClosed
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: team name is required", ErrValidationFailed)
	}

	team := &models.Team{
		DivisionID: divisionID,
		Name:       name,
		Rating:     input.Rating,
		SeedRank:   input.SeedRank,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, err
	}
	return team, nil
}

func (s *divisionService) ListTeams(ctx context.Context, divisionID int) ([]*models.Team, error) {
	if _, err := s.GetByID(ctx, divisionID); err != nil {
		return nil, err
	}
	return s.teamRepo.ListByDivision(ctx, divisionID)
}

func (s *divisionService) UploadLogo(ctx context.Context, divisionID int, contentType string, file io.Reader) (*models.Division, error) {
	division, err := s.GetByID(ctx, divisionID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("divisions/%d/logo-%s", divisionID, uuid.NewString())
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload division logo: %w", err)
	}

	oldKey := division.LogoKey
	if err := s.divisionRepo.UpdateLogoKey(ctx, divisionID, &key); err != nil {
		// Best effort: drop the freshly uploaded object on bookkeeping failure.
		_ = s.uploader.Delete(ctx, key)
		return nil, err
	}
	if oldKey != nil && *oldKey != "" {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	division.LogoKey = &key
	s.populateLogoURL(division)
	return division, nil
}

func (s *divisionService) RemoveLogo(ctx context.Context, divisionID int) error {
	division, err := s.GetByID(ctx, divisionID)
	if err != nil {
		return err
	}
	if division.LogoKey == nil || *division.LogoKey == "" {
		return nil
	}
	if err := s.divisionRepo.UpdateLogoKey(ctx, divisionID, nil); err != nil {
		return err
	}
	return s.uploader.Delete(ctx, *division.LogoKey)
}

func (s *divisionService) populateLogoURL(division *models.Division) {
	if division == nil || division.LogoKey == nil || *division.LogoKey == "" || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*division.LogoKey); url != "" {
		division.LogoURL = &url
	}
}
