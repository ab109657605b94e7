package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DuelStore is the persistence boundary for duel challenges. Every write
// method is atomic with respect to concurrent callers: the guarded status
// change, the participant writes and the coin movement commit or roll back
// together. A write whose status guard no longer holds returns ErrConflict;
// the caller re-reads and reports the post-transition state instead of
// retrying the side effects.
type DuelStore interface {
	Create(ctx context.Context, challenge *models.Challenge) error
	Get(ctx context.Context, id string) (*models.Challenge, error)
	ListForUser(ctx context.Context, userID string) ([]models.Challenge, error)
	ListOpen(ctx context.Context, excludeUserID string) ([]models.Challenge, error)
	ExpiredPending(ctx context.Context, now time.Time) ([]models.Challenge, error)
	DueAccepted(ctx context.Context, now time.Time) ([]models.Challenge, error)
	History(ctx context.Context) ([]models.Challenge, error)

	Accept(ctx context.Context, id string, userID string, startedAt time.Time, now time.Time) (*models.Challenge, error)
	CancelPending(ctx context.Context, id string, now time.Time) (*models.Challenge, error)
	CancelAccepted(ctx context.Context, id string, now time.Time, requireBeforeStart bool) (*models.Challenge, error)
	Activate(ctx context.Context, id string, taskID string, now time.Time) (*models.Challenge, error)
	RecordSubmission(ctx context.Context, id string, userID string, flag string, at time.Time) error
	CompletePayout(ctx context.Context, id string, winnerID string, prize int, at time.Time) (*models.Challenge, error)
}

// GormDuelStore implements DuelStore over postgres. The compare-and-swap on
// status is a single guarded UPDATE checked via RowsAffected, wrapped in a
// transaction with the ledger movement it belongs to.
type GormDuelStore struct {
	db     *gorm.DB
	ledger Ledger
}

func NewGormDuelStore(db *gorm.DB, ledger Ledger) *GormDuelStore {
	return &GormDuelStore{db: db, ledger: ledger}
}

// Create inserts a pending challenge and escrows the challenger's stake
func (s *GormDuelStore) Create(ctx context.Context, challenge *models.Challenge) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ledger.WithTx(tx).Debit(ctx, challenge.ChallengerID, challenge.Stake); err != nil {
			return err
		}
		if err := tx.Create(challenge).Error; err != nil {
			return fmt.Errorf("failed to create challenge: %w", err)
		}
		return nil
	})
}

func (s *GormDuelStore) Get(ctx context.Context, id string) (*models.Challenge, error) {
	var challenge models.Challenge
	err := s.db.WithContext(ctx).
		Preload("Task").
		Preload("Participants").
		First(&challenge, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to fetch challenge: %w", err)
	}
	return &challenge, nil
}

func (s *GormDuelStore) ListForUser(ctx context.Context, userID string) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := s.db.WithContext(ctx).
		Where("challenger_id = ? OR opponent_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&challenges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return challenges, nil
}

func (s *GormDuelStore) ListOpen(ctx context.Context, excludeUserID string) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := s.db.WithContext(ctx).
		Where("status = ? AND opponent_id IS NULL AND challenger_id <> ?", models.ChallengePending, excludeUserID).
		Order("created_at DESC").
		Find(&challenges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list open challenges: %w", err)
	}
	return challenges, nil
}

func (s *GormDuelStore) ExpiredPending(ctx context.Context, now time.Time) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := s.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", models.ChallengePending, now).
		Find(&challenges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expired challenges: %w", err)
	}
	return challenges, nil
}

func (s *GormDuelStore) DueAccepted(ctx context.Context, now time.Time) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := s.db.WithContext(ctx).
		Where("status = ? AND started_at <= ?", models.ChallengeAccepted, now).
		Find(&challenges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due challenges: %w", err)
	}
	return challenges, nil
}

func (s *GormDuelStore) History(ctx context.Context) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := s.db.WithContext(ctx).
		Where("status IN ?", []models.ChallengeStatus{models.ChallengeCompleted, models.ChallengeCancelled}).
		Preload("Participants").
		Order("created_at DESC").
		Find(&challenges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list challenge history: %w", err)
	}
	return challenges, nil
}

// Accept moves a pending challenge to accepted, binds the opponent, escrows
// the acceptor's stake and creates both participant rows. The status guard
// also re-checks expiry and eligibility so a concurrent accept, cancel or
// sweep can never double-process the row.
func (s *GormDuelStore) Accept(ctx context.Context, id string, userID string, startedAt time.Time, now time.Time) (*models.Challenge, error) {
	var challenge models.Challenge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&challenge, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return fmt.Errorf("failed to fetch challenge: %w", err)
		}

		res := tx.Model(&models.Challenge{}).
			Where("id = ? AND status = ? AND expires_at > ? AND challenger_id <> ? AND (opponent_id IS NULL OR opponent_id = ?)",
				id, models.ChallengePending, now, userID, userID).
			Updates(map[string]interface{}{
				"status":      models.ChallengeAccepted,
				"opponent_id": userID,
				"started_at":  startedAt,
				"updated_at":  now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to accept challenge: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		if err := s.ledger.WithTx(tx).Debit(ctx, userID, challenge.Stake); err != nil {
			return err
		}

		participants := []models.ChallengeParticipant{
			{ID: uuid.NewString(), ChallengeID: id, UserID: challenge.ChallengerID},
			{ID: uuid.NewString(), ChallengeID: id, UserID: userID},
		}
		if err := tx.Create(&participants).Error; err != nil {
			return fmt.Errorf("failed to create participants: %w", err)
		}

		challenge.Status = models.ChallengeAccepted
		challenge.OpponentID = &userID
		challenge.StartedAt = &startedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// CancelPending moves a pending challenge to cancelled and refunds the
// challenger's escrowed stake exactly once.
func (s *GormDuelStore) CancelPending(ctx context.Context, id string, now time.Time) (*models.Challenge, error) {
	var challenge models.Challenge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&challenge, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return fmt.Errorf("failed to fetch challenge: %w", err)
		}

		res := tx.Model(&models.Challenge{}).
			Where("id = ? AND status = ?", id, models.ChallengePending).
			Updates(map[string]interface{}{
				"status":     models.ChallengeCancelled,
				"updated_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to cancel challenge: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		if err := s.ledger.WithTx(tx).Credit(ctx, challenge.ChallengerID, challenge.Stake); err != nil {
			return err
		}

		challenge.Status = models.ChallengeCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// CancelAccepted moves an accepted challenge to cancelled and refunds both
// escrowed stakes in full. When requireBeforeStart is set the guard also
// checks that the activation time has not been reached, so a user cancel
// racing the sweeper's activation cannot strand the duel.
func (s *GormDuelStore) CancelAccepted(ctx context.Context, id string, now time.Time, requireBeforeStart bool) (*models.Challenge, error) {
	var challenge models.Challenge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&challenge, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return fmt.Errorf("failed to fetch challenge: %w", err)
		}

		query := tx.Model(&models.Challenge{}).
			Where("id = ? AND status = ?", id, models.ChallengeAccepted)
		if requireBeforeStart {
			query = query.Where("started_at > ?", now)
		}

		res := query.Updates(map[string]interface{}{
			"status":     models.ChallengeCancelled,
			"updated_at": now,
		})
		if res.Error != nil {
			return fmt.Errorf("failed to cancel challenge: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		ledger := s.ledger.WithTx(tx)
		if err := ledger.Credit(ctx, challenge.ChallengerID, challenge.Stake); err != nil {
			return err
		}
		if challenge.OpponentID != nil {
			if err := ledger.Credit(ctx, *challenge.OpponentID, challenge.Stake); err != nil {
				return err
			}
		}

		challenge.Status = models.ChallengeCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// Activate moves an accepted challenge past its activation time to active and
// assigns its task. No coins move on activation.
func (s *GormDuelStore) Activate(ctx context.Context, id string, taskID string, now time.Time) (*models.Challenge, error) {
	res := s.db.WithContext(ctx).Model(&models.Challenge{}).
		Where("id = ? AND status = ? AND started_at <= ?", id, models.ChallengeAccepted, now).
		Updates(map[string]interface{}{
			"status":     models.ChallengeActive,
			"task_id":    taskID,
			"updated_at": now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to activate challenge: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrConflict
	}
	return s.Get(ctx, id)
}

// RecordSubmission stores the participant's latest flag attempt
func (s *GormDuelStore) RecordSubmission(ctx context.Context, id string, userID string, flag string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.ChallengeParticipant{}).
		Where("challenge_id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"submitted_flag": flag,
			"submitted_at":   at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to record submission: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotParticipant
	}
	return nil
}

// CompletePayout is the arbiter's commit point: it atomically moves the
// challenge from active to completed while writing the winner, then pays the
// prize and marks the winning participant. Only one of two concurrent correct
// submissions can win the guarded update; the other observes ErrConflict and
// no coins move for it.
func (s *GormDuelStore) CompletePayout(ctx context.Context, id string, winnerID string, prize int, at time.Time) (*models.Challenge, error) {
	var challenge models.Challenge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&challenge, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return fmt.Errorf("failed to fetch challenge: %w", err)
		}

		res := tx.Model(&models.Challenge{}).
			Where("id = ? AND status = ?", id, models.ChallengeActive).
			Updates(map[string]interface{}{
				"status":       models.ChallengeCompleted,
				"winner_id":    winnerID,
				"completed_at": at,
				"updated_at":   at,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to complete challenge: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		if err := tx.Model(&models.ChallengeParticipant{}).
			Where("challenge_id = ? AND user_id = ?", id, winnerID).
			Updates(map[string]interface{}{
				"is_winner":      true,
				"prize_received": prize,
			}).Error; err != nil {
			return fmt.Errorf("failed to mark winner: %w", err)
		}

		if err := s.ledger.WithTx(tx).Credit(ctx, winnerID, prize); err != nil {
			return err
		}

		challenge.Status = models.ChallengeCompleted
		challenge.WinnerID = &winnerID
		challenge.CompletedAt = &at
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}
