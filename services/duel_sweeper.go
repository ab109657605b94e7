package services

import (
	"context"
	"errors"
	"log"
	"time"

	"api/metrics"
	"api/models"
)

// Sweeper advances time-dependent challenge states on a fixed interval:
// stale pending duels are cancelled with a refund and accepted duels past
// their activation time are promoted to active with a task assigned. Every
// mutation goes through the same guarded transitions as user actions, so a
// challenge moved by a concurrent request is skipped, never double-processed.
// Timestamps are the only timers; correctness survives process restarts.
type Sweeper struct {
	store    DuelStore
	pool     TaskPool
	interval time.Duration
	now      func() time.Time
}

func NewSweeper(store DuelStore, pool TaskPool, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		pool:     pool,
		interval: interval,
		now:      time.Now,
	}
}

// Run sweeps until the context is cancelled
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				log.Println("Sweep pass failed: ", err)
			}
		}
	}
}

// SweepOnce performs a single pass over expired and due challenges
func (s *Sweeper) SweepOnce(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}()

	now := s.now()

	expired, err := s.store.ExpiredPending(ctx, now)
	if err != nil {
		return err
	}
	for _, challenge := range expired {
		if _, err := s.store.CancelPending(ctx, challenge.ID, now); err != nil {
			if errors.Is(err, ErrConflict) {
				continue // moved by a concurrent accept or cancel
			}
			log.Printf("Failed to expire challenge %s: %v", challenge.ID, err)
			continue
		}
		metrics.DuelTransitions.WithLabelValues(string(models.ChallengeCancelled)).Inc()
	}

	due, err := s.store.DueAccepted(ctx, now)
	if err != nil {
		return err
	}
	for _, challenge := range due {
		s.activate(ctx, challenge, now)
	}

	return nil
}

// activate assigns a task and promotes the challenge to active. When no task
// matches the challenge's filters the duel is cancelled with both stakes
// refunded: nobody loses coins because the system could not produce a task.
func (s *Sweeper) activate(ctx context.Context, challenge models.Challenge, now time.Time) {
	task, err := s.pool.PickTask(ctx, challenge.CategoryID, challenge.Difficulty)
	if err != nil {
		if errors.Is(err, ErrNoTaskAvailable) {
			if _, err := s.store.CancelAccepted(ctx, challenge.ID, now, false); err != nil {
				if !errors.Is(err, ErrConflict) {
					log.Printf("Failed to cancel unstartable challenge %s: %v", challenge.ID, err)
				}
				return
			}
			log.Printf("Cancelled challenge %s: no task matches its filters", challenge.ID)
			metrics.DuelTransitions.WithLabelValues(string(models.ChallengeCancelled)).Inc()
			return
		}
		log.Printf("Failed to pick task for challenge %s: %v", challenge.ID, err)
		return
	}

	if _, err := s.store.Activate(ctx, challenge.ID, task.ID, now); err != nil {
		if !errors.Is(err, ErrConflict) {
			log.Printf("Failed to activate challenge %s: %v", challenge.ID, err)
		}
		return
	}
	metrics.DuelTransitions.WithLabelValues(string(models.ChallengeActive)).Inc()
}
