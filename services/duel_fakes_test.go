package services

import (
	"context"
	"sync"
	"time"

	"api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory fakes for the duel engine. Each write method holds the store
// mutex for the whole guarded sequence, mirroring the transactional
// implementation: the status compare-and-swap, the participant writes and the
// coin movement are linearized exactly like their postgres counterparts.

type memLedger struct {
	mu       sync.Mutex
	balances map[string]int
}

func newMemLedger() *memLedger {
	return &memLedger{balances: make(map[string]int)}
}

func (l *memLedger) Debit(ctx context.Context, userID string, amount int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[userID] < amount {
		return ErrInsufficientFunds
	}
	l.balances[userID] -= amount
	return nil
}

func (l *memLedger) Credit(ctx context.Context, userID string, amount int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[userID] += amount
	return nil
}

func (l *memLedger) WithTx(tx *gorm.DB) Ledger { return l }

func (l *memLedger) balance(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID]
}

func (l *memLedger) total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	sum := 0
	for _, b := range l.balances {
		sum += b
	}
	return sum
}

type memStore struct {
	mu           sync.Mutex
	ledger       *memLedger
	challenges   map[string]*models.Challenge
	participants map[string][]*models.ChallengeParticipant
	tasks        map[string]*models.DuelTask
}

func newMemStore(ledger *memLedger) *memStore {
	return &memStore{
		ledger:       ledger,
		challenges:   make(map[string]*models.Challenge),
		participants: make(map[string][]*models.ChallengeParticipant),
		tasks:        make(map[string]*models.DuelTask),
	}
}

func (s *memStore) addTask(task *models.DuelTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
}

func copyChallenge(ch *models.Challenge) *models.Challenge {
	dup := *ch
	return &dup
}

func (s *memStore) Create(ctx context.Context, challenge *models.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.Debit(ctx, challenge.ChallengerID, challenge.Stake); err != nil {
		return err
	}
	challenge.CreatedAt = time.Now()
	s.challenges[challenge.ID] = copyChallenge(challenge)
	return nil
}

func (s *memStore) Get(ctx context.Context, id string) (*models.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

func (s *memStore) get(id string) (*models.Challenge, error) {
	ch, ok := s.challenges[id]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	dup := copyChallenge(ch)
	if ch.TaskID != nil {
		dup.Task = s.tasks[*ch.TaskID]
	}
	for _, p := range s.participants[id] {
		participant := *p
		dup.Participants = append(dup.Participants, &participant)
	}
	return dup, nil
}

func (s *memStore) ListForUser(ctx context.Context, userID string) ([]models.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Challenge
	for _, ch := range s.challenges {
		if ch.ChallengerID == userID || (ch.OpponentID != nil && *ch.OpponentID == userID) {
			out = append(out, *copyChallenge(ch))
		}
	}
	return out, nil
}

func (s *memStore) ListOpen(ctx context.Context, excludeUserID string) ([]models.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Challenge
	for _, ch := range s.challenges {
		if ch.Status == models.ChallengePending && ch.OpponentID == nil && ch.ChallengerID != excludeUserID {
			out = append(out, *copyChallenge(ch))
		}
	}
	return out, nil
}

func (s *memStore) ExpiredPending(ctx context.Context, now time.Time) ([]models.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Challenge
	for _, ch := range s.challenges {
		if ch.Status == models.ChallengePending && !ch.ExpiresAt.After(now) {
			out = append(out, *copyChallenge(ch))
		}
	}
	return out, nil
}

func (s *memStore) DueAccepted(ctx context.Context, now time.Time) ([]models.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Challenge
	for _, ch := range s.challenges {
		if ch.Status == models.ChallengeAccepted && ch.StartedAt != nil && !ch.StartedAt.After(now) {
			out = append(out, *copyChallenge(ch))
		}
	}
	return out, nil
}

func (s *memStore) History(ctx context.Context) ([]models.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Challenge
	for id, ch := range s.challenges {
		if ch.Status == models.ChallengeCompleted || ch.Status == models.ChallengeCancelled {
			dup, _ := s.get(id)
			out = append(out, *dup)
		}
	}
	return out, nil
}

func (s *memStore) Accept(ctx context.Context, id string, userID string, startedAt time.Time, now time.Time) (*models.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[id]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	if ch.Status != models.ChallengePending ||
		!ch.ExpiresAt.After(now) ||
		ch.ChallengerID == userID ||
		(ch.OpponentID != nil && *ch.OpponentID != userID) {
		return nil, ErrConflict
	}
	if err := s.ledger.Debit(ctx, userID, ch.Stake); err != nil {
		return nil, err
	}
	ch.Status = models.ChallengeAccepted
	ch.OpponentID = &userID
	ch.StartedAt = &startedAt
	s.participants[id] = []*models.ChallengeParticipant{
		{ID: uuid.NewString(), ChallengeID: id, UserID: ch.ChallengerID},
		{ID: uuid.NewString(), ChallengeID: id, UserID: userID},
	}
	return copyChallenge(ch), nil
}

func (s *memStore) CancelPending(ctx context.Context, id string, now time.Time) (*models.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[id]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	if ch.Status != models.ChallengePending {
		return nil, ErrConflict
	}
	ch.Status = models.ChallengeCancelled
	if err := s.ledger.Credit(ctx, ch.ChallengerID, ch.Stake); err != nil {
		return nil, err
	}
	return copyChallenge(ch), nil
}

func (s *memStore) CancelAccepted(ctx context.Context, id string, now time.Time, requireBeforeStart bool) (*models.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[id]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	if ch.Status != models.ChallengeAccepted {
		return nil, ErrConflict
	}
	if requireBeforeStart && (ch.StartedAt == nil || !ch.StartedAt.After(now)) {
		return nil, ErrConflict
	}
	ch.Status = models.ChallengeCancelled
	if err := s.ledger.Credit(ctx, ch.ChallengerID, ch.Stake); err != nil {
		return nil, err
	}
	if ch.OpponentID != nil {
		if err := s.ledger.Credit(ctx, *ch.OpponentID, ch.Stake); err != nil {
			return nil, err
		}
	}
	return copyChallenge(ch), nil
}

func (s *memStore) Activate(ctx context.Context, id string, taskID string, now time.Time) (*models.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[id]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	if ch.Status != models.ChallengeAccepted || ch.StartedAt == nil || ch.StartedAt.After(now) {
		return nil, ErrConflict
	}
	ch.Status = models.ChallengeActive
	ch.TaskID = &taskID
	return s.get(id)
}

func (s *memStore) RecordSubmission(ctx context.Context, id string, userID string, flag string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.participants[id] {
		if p.UserID == userID {
			submitted := flag
			submittedAt := at
			p.SubmittedFlag = &submitted
			p.SubmittedAt = &submittedAt
			return nil
		}
	}
	return ErrNotParticipant
}

func (s *memStore) CompletePayout(ctx context.Context, id string, winnerID string, prize int, at time.Time) (*models.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[id]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	if ch.Status != models.ChallengeActive {
		return nil, ErrConflict
	}
	ch.Status = models.ChallengeCompleted
	ch.WinnerID = &winnerID
	completedAt := at
	ch.CompletedAt = &completedAt
	for _, p := range s.participants[id] {
		if p.UserID == winnerID {
			p.IsWinner = true
			p.PrizeReceived = prize
		}
	}
	if err := s.ledger.Credit(ctx, winnerID, prize); err != nil {
		return nil, err
	}
	return s.get(id)
}

// memTaskPool serves tasks registered with the store, honoring the filters
type memTaskPool struct {
	store *memStore
}

func (p *memTaskPool) PickTask(ctx context.Context, categoryID *string, difficulty *string) (*models.DuelTask, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	for _, task := range p.store.tasks {
		if categoryID != nil && (task.CategoryID == nil || *task.CategoryID != *categoryID) {
			continue
		}
		if difficulty != nil && task.Difficulty != *difficulty {
			continue
		}
		return task, nil
	}
	return nil, ErrNoTaskAvailable
}
