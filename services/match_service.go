package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clubpoint/bracket-system/brackets"
	"github.com/clubpoint/bracket-system/models"
	"github.com/clubpoint/bracket-system/repositories"
	"github.com/clubpoint/bracket-system/scoring"
)

type SubmitResultInput struct {
	Sets            []models.Set `json:"sets"`
	ExpectedVersion int          `json:"expected_version"`
	// Correction reopens a finalized match for exactly one corrected
	// result; without it a finalized match rejects submissions.
	Correction bool `json:"correction"`
}

type MatchService interface {
	GetByID(ctx context.Context, matchID int) (*models.Match, error)
	// SubmitResult replaces the match's sets wholesale, computes the
	// winner and moves the match to reported. Guarded by the version
	// counter: a stale expected version never mutates anything.
	SubmitResult(ctx context.Context, matchID int, input SubmitResultInput) (*models.Match, error)
	// Finalize locks the reported winner in and advances it (and the
	// loser, where the bracket asks for one) into the downstream slots,
	// all inside one transaction.
	Finalize(ctx context.Context, matchID int, expectedVersion int) (*models.Match, error)
}

type matchService struct {
	db           *sql.DB
	matchRepo    repositories.MatchRepository
	bracketRepo  repositories.BracketRepository
	divisionRepo repositories.DivisionRepository
	logger       *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	bracketRepo repositories.BracketRepository,
	divisionRepo repositories.DivisionRepository,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:           db,
		matchRepo:    matchRepo,
		bracketRepo:  bracketRepo,
		divisionRepo: divisionRepo,
		logger:       logger,
	}
}

func (s *matchService) GetByID(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) SubmitResult(ctx context.Context, matchID int, input SubmitResultInput) (*models.Match, error) {
	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if match.Version != input.ExpectedVersion {
		return nil, matchConflict(ErrVersionMismatch, match)
	}
	if match.IsBye() {
		return nil, fmt.Errorf("%w: bye matches decide themselves", ErrValidationFailed)
	}
	if match.Slot1.TeamID == nil || match.Slot2.TeamID == nil {
		return nil, fmt.Errorf("%w: both slots must be resolved before a result can be reported", ErrValidationFailed)
	}
	if match.Status == models.MatchStatusFinalized {
		if !input.Correction {
			return nil, matchConflict(ErrMatchAlreadyFinalized, match)
		}
		if match.Corrected {
			// One correction cycle per match; anything further is an
			// administrative problem.
			return nil, matchConflict(fmt.Errorf("%w: match was already corrected once", ErrMatchAlreadyFinalized), match)
		}
	}

	rules, err := s.matchRules(ctx, match)
	if err != nil {
		return nil, err
	}

	side, err := scoring.Resolve(input.Sets, rules)
	if err != nil {
		return nil, mapScoringError(err)
	}

	winner := match.Slot1.TeamID
	if side == scoring.Side2 {
		winner = match.Slot2.TeamID
	}

	if match.Status == models.MatchStatusFinalized {
		match.Corrected = true
	}
	match.Sets = input.Sets
	match.WinnerID = winner
	match.Status = models.MatchStatusReported

	if err := s.matchRepo.Update(ctx, nil, match, input.ExpectedVersion); err != nil {
		if errors.Is(err, repositories.ErrMatchVersionConflict) {
			return nil, s.staleVersion(ctx, matchID)
		}
		return nil, err
	}

	s.logger.Info("match result reported",
		slog.Int("match_id", match.ID),
		slog.Int("winner_id", *winner),
		slog.Bool("correction", match.Corrected),
	)
	return match, nil
}

func (s *matchService) Finalize(ctx context.Context, matchID int, expectedVersion int) (*models.Match, error) {
	current, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if current.Version != expectedVersion {
		return nil, matchConflict(ErrVersionMismatch, current)
	}
	switch current.Status {
	case models.MatchStatusReported:
		// The only state finalize accepts.
	case models.MatchStatusFinalized:
		return nil, matchConflict(ErrMatchAlreadyFinalized, current)
	default:
		return nil, fmt.Errorf("%w: match has no reported result to finalize", ErrValidationFailed)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
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

	all, txErr := s.matchRepo.ListByBracket(ctx, tx, current.BracketID)
	if txErr != nil {
		return nil, txErr
	}
	match := findMatch(all, matchID)
	if match == nil {
		txErr = ErrMatchNotFound
		return nil, txErr
	}
	if match.Version != expectedVersion || match.Status != models.MatchStatusReported {
		txErr = matchConflict(ErrVersionMismatch, match)
		return nil, txErr
	}

	match.Status = models.MatchStatusFinalized

	// Propagation and finalize commit or roll back together: a crash can
	// never leave a winner recorded without its downstream effect.
	changed, advErr := brackets.Advance(all, match)
	if advErr != nil {
		if errors.Is(advErr, brackets.ErrPropagationConflict) {
			txErr = matchConflict(fmt.Errorf("%w: %v", ErrPropagationConflict, advErr), match)
		} else {
			txErr = advErr
		}
		return nil, txErr
	}

	if txErr = s.matchRepo.Update(ctx, tx, match, expectedVersion); txErr != nil {
		if errors.Is(txErr, repositories.ErrMatchVersionConflict) {
			txErr = s.staleVersion(ctx, matchID)
		}
		return nil, txErr
	}
	for _, m := range changed {
		if txErr = s.matchRepo.Update(ctx, tx, m, m.Version); txErr != nil {
			if errors.Is(txErr, repositories.ErrMatchVersionConflict) {
				txErr = s.staleVersion(ctx, m.ID)
			}
			return nil, txErr
		}
	}

	if match.Stage == models.MatchStageGrandFinal {
		if txErr = s.handleGrandFinal(ctx, tx, all, match); txErr != nil {
			return nil, txErr
		}
	}

	if txErr = s.maybeCompleteDivision(ctx, tx, all, match); txErr != nil {
		return nil, txErr
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit finalize: %w", txErr)
	}

	s.logger.Info("match finalized",
		slog.Int("match_id", match.ID),
		slog.Int("advanced", len(changed)),
	)
	return match, nil
}

// handleGrandFinal implements the double-elimination bracket reset: the
// losers-bracket champion arriving through slot 2 has one loss, the winners
// champion none, so a slot-2 win forces one extra decisive match. The reset
// is created on demand, never as part of the generated structure. A
// correction that re-finalizes the grand final after a reset match already
// exists is a propagation conflict; matches are never deleted.
func (s *matchService) handleGrandFinal(ctx context.Context, tx repositories.SQLExecutor, all []*models.Match, grandFinal *models.Match) error {
	for _, m := range all {
		if m.Stage == models.MatchStageGrandFinalReset {
			return matchConflict(fmt.Errorf("%w: grand final reset match %d already exists", ErrPropagationConflict, m.ID), grandFinal)
		}
	}

	if grandFinal.WinnerID == nil || grandFinal.Slot2.TeamID == nil ||
		*grandFinal.WinnerID != *grandFinal.Slot2.TeamID {
		return nil // winners-bracket champion held, the bracket is done
	}

	rounds, err := s.bracketRepo.ListRounds(ctx, grandFinal.BracketID)
	if err != nil {
		return err
	}
	nextNumber := 1
	if len(rounds) > 0 {
		nextNumber = rounds[len(rounds)-1].Number + 1
	}

	round := &models.Round{
		BracketID: grandFinal.BracketID,
		Number:    nextNumber,
		Label:     "Grand Final Reset",
	}
	if err := s.bracketRepo.CreateRound(ctx, tx, round); err != nil {
		return err
	}

	slot1 := *grandFinal.Slot1.TeamID
	slot2 := *grandFinal.Slot2.TeamID
	reset := &models.Match{
		BracketID: grandFinal.BracketID,
		RoundID:   round.ID,
		Position:  1,
		Stage:     models.MatchStageGrandFinalReset,
		Slot1:     models.Slot{TeamID: &slot1},
		Slot2:     models.Slot{TeamID: &slot2},
		Status:    models.MatchStatusPending,
		Version:   1,
	}
	if err := s.matchRepo.Create(ctx, tx, reset); err != nil {
		return err
	}

	s.logger.Info("grand final reset created",
		slog.Int("bracket_id", grandFinal.BracketID),
		slog.Int("match_id", reset.ID),
	)
	return nil
}

// maybeCompleteDivision flips the division to completed once every match of
// the bracket is finalized and no reset is pending.
func (s *matchService) maybeCompleteDivision(ctx context.Context, tx repositories.SQLExecutor, all []*models.Match, justFinalized *models.Match) error {
	if justFinalized.Stage == models.MatchStageGrandFinal &&
		justFinalized.WinnerID != nil && justFinalized.Slot2.TeamID != nil &&
		*justFinalized.WinnerID == *justFinalized.Slot2.TeamID {
		return nil // a reset match was just created
	}
	for _, m := range all {
		if m.Status != models.MatchStatusFinalized {
			return nil
		}
	}

	bracket, err := s.bracketRepo.GetByID(ctx, justFinalized.BracketID)
	if err != nil {
		return err
	}
	return s.divisionRepo.UpdateStatus(ctx, tx, bracket.DivisionID, models.DivisionStatusCompleted)
}

func (s *matchService) matchRules(ctx context.Context, match *models.Match) (scoring.Rules, error) {
	bracket, err := s.bracketRepo.GetByID(ctx, match.BracketID)
	if err != nil {
		return scoring.Rules{}, err
	}
	division, err := s.divisionRepo.GetByID(ctx, bracket.DivisionID)
	if err != nil {
		return scoring.Rules{}, err
	}
	settings := brackets.ParseSettings(division.SettingsJSON)
	return scoring.Rules{BestOf: settings.BestOf}, nil
}

// matchConflict attaches the authoritative match state to a conflict
// sentinel, so the caller learns the id and version to retry against.
func matchConflict(reason error, match *models.Match) error {
	return &ConflictError{Reason: reason, ResourceID: match.ID, CurrentVersion: match.Version}
}

// staleVersion re-reads the match after a lost version race and reports the
// stored version alongside the mismatch.
func (s *matchService) staleVersion(ctx context.Context, matchID int) error {
	current, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return ErrVersionMismatch
	}
	return matchConflict(ErrVersionMismatch, current)
}

func findMatch(matches []*models.Match, id int) *models.Match {
	for _, m := range matches {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func mapScoringError(err error) error {
	switch {
	case errors.Is(err, scoring.ErrIncompleteResult):
		return fmt.Errorf("%w: %v", ErrIncompleteResult, err)
	case errors.Is(err, scoring.ErrNoSets), errors.Is(err, scoring.ErrInvalidSet):
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	default:
		return err
	}
}
