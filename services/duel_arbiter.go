package services

import (
	"context"
	"errors"
	"fmt"

	"api/metrics"
	"api/models"
	"api/utils"
)

// SubmitResult is the outcome of a flag submission. AlreadyDecided marks a
// submission that arrived after the duel was resolved, including the losing
// side of a near-simultaneous pair of correct flags; it is a normal outcome,
// not an error.
type SubmitResult struct {
	Correct        bool `json:"correct"`
	IsWinner       bool `json:"is_winner"`
	Prize          int  `json:"prize,omitempty"`
	AlreadyDecided bool `json:"already_decided,omitempty"`
}

// SubmitFlag arbitrates a participant's flag submission against an active
// duel. A correct flag attempts a single guarded transition active ->
// completed that also writes the winner; whichever of two concurrent correct
// submissions wins that race is the only one that triggers the payout. The
// loser observes the already-completed state and is told the duel is decided.
// Incorrect flags never attempt the transition.
func (s *DuelService) SubmitFlag(ctx context.Context, id string, userID string, flag string) (*SubmitResult, error) {
	if !utils.ValidFlagFormat(s.flagPrefix, flag) {
		return nil, ErrMalformedFlag
	}

	challenge, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.isParticipant(challenge, userID) {
		return nil, ErrNotParticipant
	}

	if challenge.Status == models.ChallengeCompleted {
		// Client retry after resolution: report the decision, never pay twice
		metrics.DuelSubmissions.WithLabelValues("already_decided").Inc()
		return s.decidedResult(challenge, userID, flag), nil
	}
	if challenge.Status != models.ChallengeActive {
		return nil, ErrWrongState
	}
	if challenge.Task == nil {
		return nil, fmt.Errorf("active challenge %s has no task assigned", id)
	}

	now := s.now()
	if err := s.store.RecordSubmission(ctx, id, userID, utils.NormalizeFlag(flag), now); err != nil {
		return nil, err
	}

	if utils.NormalizeFlag(flag) != challenge.Task.Flag {
		metrics.DuelSubmissions.WithLabelValues("incorrect").Inc()
		return &SubmitResult{Correct: false}, nil
	}

	prize := 2 * challenge.Stake
	if _, err := s.store.CompletePayout(ctx, id, userID, prize, now); err != nil {
		if errors.Is(err, ErrConflict) {
			// Lost the resolution race; re-read and report the decided state
			decided, err := s.store.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			if decided.Status == models.ChallengeCompleted {
				metrics.DuelSubmissions.WithLabelValues("already_decided").Inc()
				return s.decidedResult(decided, userID, flag), nil
			}
			return nil, ErrWrongState
		}
		return nil, err
	}

	metrics.DuelTransitions.WithLabelValues(string(models.ChallengeCompleted)).Inc()
	metrics.DuelSubmissions.WithLabelValues("won").Inc()
	metrics.DuelPayouts.Add(float64(prize))
	return &SubmitResult{Correct: true, IsWinner: true, Prize: prize}, nil
}

func (s *DuelService) decidedResult(challenge *models.Challenge, userID string, flag string) *SubmitResult {
	result := &SubmitResult{AlreadyDecided: true}
	if challenge.Task != nil {
		result.Correct = utils.NormalizeFlag(flag) == challenge.Task.Flag
	}
	if challenge.WinnerID != nil && *challenge.WinnerID == userID {
		result.IsWinner = true
	}
	return result
}
