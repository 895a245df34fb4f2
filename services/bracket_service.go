package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/clubpoint/bracket-system/brackets"
	"github.com/clubpoint/bracket-system/models"
	"github.com/clubpoint/bracket-system/repositories"
)

type GenerateBracketInput struct {
	SeedingPolicy brackets.SeedingPolicy `json:"seeding_policy"`
	// ManualOrder lists team ids in seed order; required for the manual
	// policy and must be a permutation of the registered teams.
	ManualOrder []int `json:"manual_order,omitempty"`
	// RandomSeed makes the random policy reproducible.
	RandomSeed *int64 `json:"random_seed,omitempty"`
}

type BracketService interface {
	// Generate builds, persists and locks the bracket for a division in a
	// single transaction. A division can be generated exactly once; any
	// repeat attempt fails with ErrBracketAlreadyGenerated and leaves the
	// existing bracket untouched.
	Generate(ctx context.Context, divisionID int, input GenerateBracketInput) (*models.Bracket, error)
	// GetByDivision returns the bracket with rounds and matches assembled.
	// An ungenerated division yields an empty bracket with zero rounds,
	// never an error, so polling clients can treat absence as normal.
	GetByDivision(ctx context.Context, divisionID int) (*models.Bracket, error)
}

type bracketService struct {
	db           *sql.DB
	divisionRepo repositories.DivisionRepository
	teamRepo     repositories.TeamRepository
	bracketRepo  repositories.BracketRepository
	matchRepo    repositories.MatchRepository
	logger       *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	divisionRepo repositories.DivisionRepository,
	teamRepo repositories.TeamRepository,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:           db,
		divisionRepo: divisionRepo,
		teamRepo:     teamRepo,
		bracketRepo:  bracketRepo,
		matchRepo:    matchRepo,
		logger:       logger,
	}
}

func (s *bracketService) Generate(ctx context.Context, divisionID int, input GenerateBracketInput) (*models.Bracket, error) {
	division, err := s.divisionRepo.GetByID(ctx, divisionID)
	if err != nil {
		if errors.Is(err, repositories.ErrDivisionNotFound) {
			return nil, ErrDivisionNotFound
		}
		return nil, err
	}

	if existing, err := s.bracketRepo.GetByDivision(ctx, divisionID); err == nil {
		return nil, &ConflictError{Reason: ErrBracketAlreadyGenerated, ResourceID: existing.ID}
	} else if !errors.Is(err, repositories.ErrBracketNotFound) {
		return nil, err
	}

	// Registration snapshot at the moment of generation; later roster
	// changes are not observed.
	teams, err := s.teamRepo.ListByDivision(ctx, divisionID)
	if err != nil {
		return nil, err
	}

	seeded, err := s.seed(teams, input)
	if err != nil {
		return nil, err
	}

	generator, err := brackets.ForFormat(division.Format)
	if err != nil {
		return nil, ErrUnsupportedConfiguration
	}

	structure, err := generator.GenerateStructure(ctx, brackets.GenerateParams{
		Division: division,
		Entrants: seeded,
		Settings: brackets.ParseSettings(division.SettingsJSON),
	})
	if err != nil {
		return nil, mapGenerationError(err)
	}

	s.logger.Info("generated bracket structure",
		slog.Int("division_id", divisionID),
		slog.String("format", generator.GetName()),
		slog.Int("teams", len(seeded)),
		slog.Int("matches", structure.MatchCount()),
	)

	if err := s.persistStructure(ctx, division, structure); err != nil {
		// Lost a generation race: surface the winner's bracket id.
		if errors.Is(err, ErrBracketAlreadyGenerated) {
			if existing, getErr := s.bracketRepo.GetByDivision(ctx, divisionID); getErr == nil {
				return nil, &ConflictError{Reason: ErrBracketAlreadyGenerated, ResourceID: existing.ID}
			}
		}
		return nil, err
	}

	return s.GetByDivision(ctx, divisionID)
}

// persistStructure stores bracket, rounds and matches as one atomic unit.
// The unique constraint on brackets.division_id decides races between
// concurrent generation calls: exactly one commit wins, the rest surface
// ErrBracketAlreadyGenerated.
func (s *bracketService) persistStructure(ctx context.Context, division *models.Division, structure *brackets.Structure) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	bracket := &models.Bracket{
		DivisionID: division.ID,
		Format:     division.Format,
		LockState:  models.BracketLockLocked,
	}
	if txErr = s.bracketRepo.Create(ctx, tx, bracket); txErr != nil {
		if errors.Is(txErr, repositories.ErrBracketExists) {
			txErr = ErrBracketAlreadyGenerated
		}
		return txErr
	}

	// Insert rounds and matches in structure order; source references only
	// point backwards, so every UID resolves by the time it is needed.
	matchIDByUID := make(map[string]int)
	inserted := make([]*models.Match, 0, structure.MatchCount())
	for _, structRound := range structure.Rounds {
		round := &models.Round{
			BracketID: bracket.ID,
			Number:    structRound.Number,
			Label:     structRound.Label,
		}
		if txErr = s.bracketRepo.CreateRound(ctx, tx, round); txErr != nil {
			return txErr
		}

		for _, sm := range structRound.Matches {
			match := &models.Match{
				BracketID: bracket.ID,
				RoundID:   round.ID,
				Position:  sm.Order,
				Stage:     sm.Stage,
				Status:    models.MatchStatusPending,
				Version:   1,
			}
			if match.Slot1, txErr = resolveSlot(sm.Slot1, matchIDByUID); txErr != nil {
				return txErr
			}
			if match.Slot2, txErr = resolveSlot(sm.Slot2, matchIDByUID); txErr != nil {
				return txErr
			}
			if txErr = s.matchRepo.Create(ctx, tx, match); txErr != nil {
				return txErr
			}
			matchIDByUID[sm.UID] = match.ID
			inserted = append(inserted, match)
		}
	}

	// Byes decide themselves: auto-finalize and propagate before the
	// bracket becomes visible.
	changed, err := brackets.FinalizeByes(inserted)
	if err != nil {
		txErr = err
		return txErr
	}
	for _, m := range changed {
		if txErr = s.matchRepo.Update(ctx, tx, m, m.Version); txErr != nil {
			return txErr
		}
	}

	if txErr = s.divisionRepo.UpdateStatus(ctx, tx, division.ID, models.DivisionStatusActive); txErr != nil {
		return txErr
	}

	if txErr = tx.Commit(); txErr != nil {
		return fmt.Errorf("failed to commit bracket generation: %w", txErr)
	}
	return nil
}

func resolveSlot(ref brackets.SlotRef, matchIDByUID map[string]int) (models.Slot, error) {
	slot := models.Slot{Bye: ref.Bye}
	if ref.TeamID != nil {
		id := *ref.TeamID
		slot.TeamID = &id
	}
	if ref.SourceUID != nil {
		sourceID, ok := matchIDByUID[*ref.SourceUID]
		if !ok {
			return models.Slot{}, fmt.Errorf("slot references unknown match %q", *ref.SourceUID)
		}
		outcome := ref.Outcome
		slot.SourceMatchID = &sourceID
		slot.SourceOutcome = &outcome
	}
	return slot, nil
}

func (s *bracketService) seed(teams []*models.Team, input GenerateBracketInput) ([]*models.Team, error) {
	policy := input.SeedingPolicy
	if policy == "" {
		policy = brackets.SeedingRating
	}
	if !policy.Valid() {
		return nil, fmt.Errorf("%w: unknown seeding policy %q", ErrValidationFailed, policy)
	}

	if policy == brackets.SeedingManual {
		ordered, err := orderManually(teams, input.ManualOrder)
		if err != nil {
			return nil, err
		}
		teams = ordered
	}

	var src rand.Source
	if input.RandomSeed != nil {
		src = rand.NewSource(*input.RandomSeed)
	}

	seeded, err := brackets.Seed(teams, policy, src)
	if err != nil {
		return nil, mapGenerationError(err)
	}
	return seeded, nil
}

// orderManually rearranges teams into the caller-supplied id order,
// requiring an exact permutation of the registered snapshot.
func orderManually(teams []*models.Team, order []int) ([]*models.Team, error) {
	if len(order) != len(teams) {
		return nil, fmt.Errorf("%w: manual order lists %d teams, %d registered", ErrValidationFailed, len(order), len(teams))
	}
	byID := make(map[int]*models.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}
	ordered := make([]*models.Team, 0, len(order))
	for _, id := range order {
		team, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: team %d is not registered in this division", ErrValidationFailed, id)
		}
		delete(byID, id)
		ordered = append(ordered, team)
	}
	return ordered, nil
}

func mapGenerationError(err error) error {
	switch {
	case errors.Is(err, brackets.ErrInsufficientEntrants):
		return fmt.Errorf("%w: %v", ErrInsufficientParticipants, err)
	case errors.Is(err, brackets.ErrUnsupportedConfiguration):
		return fmt.Errorf("%w: %v", ErrUnsupportedConfiguration, err)
	default:
		return err
	}
}

func (s *bracketService) GetByDivision(ctx context.Context, divisionID int) (*models.Bracket, error) {
	if _, err := s.divisionRepo.GetByID(ctx, divisionID); err != nil {
		if errors.Is(err, repositories.ErrDivisionNotFound) {
			return nil, ErrDivisionNotFound
		}
		return nil, err
	}

	bracket, err := s.bracketRepo.GetByDivision(ctx, divisionID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			// Not yet generated is a normal empty state.
			return &models.Bracket{DivisionID: divisionID, Rounds: []*models.Round{}}, nil
		}
		return nil, err
	}

	var (
		rounds  []*models.Round
		matches []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rounds, err = s.bracketRepo.ListRounds(gCtx, bracket.ID)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByBracket(gCtx, nil, bracket.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byRound := make(map[int]*models.Round, len(rounds))
	for _, r := range rounds {
		r.Matches = []*models.Match{}
		byRound[r.ID] = r
	}
	for _, m := range matches {
		if r, ok := byRound[m.RoundID]; ok {
			r.Matches = append(r.Matches, m)
		}
	}
	bracket.Rounds = rounds
	return bracket, nil
}
