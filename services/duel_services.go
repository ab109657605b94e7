package services

import (
	"context"
	"errors"
	"time"

	"api/config"
	"api/metrics"
	"api/models"

	"github.com/google/uuid"
)

// DuelService is the challenge lifecycle manager. It validates transitions
// and eligibility, then delegates the race-safe state change plus its coin
// movement to the store. Timeout and activation are not managed here; the
// Sweeper re-evaluates the expires_at/started_at timestamps periodically.
type DuelService struct {
	store      DuelStore
	pool       TaskPool
	timing     config.DuelTimingConfig
	flagPrefix string
	now        func() time.Time
}

func NewDuelService(store DuelStore, pool TaskPool, timing config.DuelTimingConfig, flagPrefix string) *DuelService {
	return &DuelService{
		store:      store,
		pool:       pool,
		timing:     timing,
		flagPrefix: flagPrefix,
		now:        time.Now,
	}
}

// CreateChallenge opens a pending duel and escrows the challenger's stake.
// A nil opponent leaves the duel open to anyone; nil category/difficulty
// mean the task pool picks freely at activation time.
func (s *DuelService) CreateChallenge(ctx context.Context, challengerID string, stake int, opponentID *string, categoryID *string, difficulty *string) (*models.Challenge, error) {
	if stake <= 0 {
		return nil, ErrInvalidStake
	}
	if opponentID != nil && *opponentID == challengerID {
		return nil, ErrNotEligibleOpponent
	}

	now := s.now()
	challenge := &models.Challenge{
		ID:           uuid.NewString(),
		ChallengerID: challengerID,
		OpponentID:   opponentID,
		CategoryID:   categoryID,
		Difficulty:   difficulty,
		Stake:        stake,
		Status:       models.ChallengePending,
		ExpiresAt:    now.Add(s.timing.CreationTTL),
	}

	if err := s.store.Create(ctx, challenge); err != nil {
		return nil, err
	}

	metrics.DuelTransitions.WithLabelValues(string(models.ChallengePending)).Inc()
	return challenge, nil
}

// AcceptChallenge joins a pending duel as the opponent, escrows the
// acceptor's stake and schedules activation a fixed delay from now.
func (s *DuelService) AcceptChallenge(ctx context.Context, id string, userID string) (*models.Challenge, error) {
	challenge, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if challenge.Status != models.ChallengePending {
		return nil, ErrWrongState
	}
	if userID == challenge.ChallengerID {
		return nil, ErrNotEligibleOpponent
	}
	if challenge.OpponentID != nil && *challenge.OpponentID != userID {
		return nil, ErrNotEligibleOpponent
	}

	now := s.now()
	if !now.Before(challenge.ExpiresAt) {
		return nil, ErrChallengeExpired
	}

	accepted, err := s.store.Accept(ctx, id, userID, now.Add(s.timing.ActivationDelay), now)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			// A concurrent accept, cancel or sweep moved the challenge first
			return nil, s.resolveAcceptConflict(ctx, id)
		}
		return nil, err
	}

	metrics.DuelTransitions.WithLabelValues(string(models.ChallengeAccepted)).Inc()
	return accepted, nil
}

func (s *DuelService) resolveAcceptConflict(ctx context.Context, id string) error {
	challenge, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if challenge.Status == models.ChallengePending && !s.now().Before(challenge.ExpiresAt) {
		return ErrChallengeExpired
	}
	return ErrWrongState
}

// CancelChallenge withdraws a duel before it becomes active. The challenger
// may cancel while pending; either participant may cancel an accepted duel
// until its activation time. Escrowed stakes are refunded in full.
func (s *DuelService) CancelChallenge(ctx context.Context, id string, userID string) (*models.Challenge, error) {
	challenge, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch challenge.Status {
	case models.ChallengePending:
		if userID != challenge.ChallengerID {
			return nil, ErrNotParticipant
		}
		cancelled, err := s.store.CancelPending(ctx, id, s.now())
		if err != nil {
			if errors.Is(err, ErrConflict) {
				return nil, ErrWrongState
			}
			return nil, err
		}
		metrics.DuelTransitions.WithLabelValues(string(models.ChallengeCancelled)).Inc()
		return cancelled, nil

	case models.ChallengeAccepted:
		if !s.isParticipant(challenge, userID) {
			return nil, ErrNotParticipant
		}
		now := s.now()
		if challenge.StartedAt == nil || !now.Before(*challenge.StartedAt) {
			return nil, ErrWrongState
		}
		cancelled, err := s.store.CancelAccepted(ctx, id, now, true)
		if err != nil {
			if errors.Is(err, ErrConflict) {
				return nil, ErrWrongState
			}
			return nil, err
		}
		metrics.DuelTransitions.WithLabelValues(string(models.ChallengeCancelled)).Inc()
		return cancelled, nil

	default:
		return nil, ErrWrongState
	}
}

// GetChallenge returns a duel with its participants. The task is stripped
// unless the duel is active or completed and the viewer is a participant, so
// task content never leaks before activation or to spectators.
func (s *DuelService) GetChallenge(ctx context.Context, id string, viewerID string) (*models.Challenge, error) {
	challenge, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	visible := (challenge.Status == models.ChallengeActive || challenge.Status == models.ChallengeCompleted) &&
		s.isParticipant(challenge, viewerID)
	if !visible {
		challenge.Task = nil
	}
	return challenge, nil
}

// ListChallenges returns the caller's own duels plus the open duels they
// could accept. Listings never carry task bodies.
func (s *DuelService) ListChallenges(ctx context.Context, userID string) (own []models.Challenge, open []models.Challenge, err error) {
	own, err = s.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	open, err = s.store.ListOpen(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return own, open, nil
}

func (s *DuelService) isParticipant(challenge *models.Challenge, userID string) bool {
	if userID == challenge.ChallengerID {
		return true
	}
	return challenge.OpponentID != nil && *challenge.OpponentID == userID
}
