package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitFlag_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("MalformedFlag", func(t *testing.T) {
		env := newDuelTestEnv()
		challenge := env.runToActive(t, "CCTF{answer}")

		_, err := env.svc.SubmitFlag(ctx, challenge.ID, "bob", "answer")
		assert.ErrorIs(t, err, ErrMalformedFlag)

		_, err = env.svc.SubmitFlag(ctx, challenge.ID, "bob", "WRONG{answer}")
		assert.ErrorIs(t, err, ErrMalformedFlag)
	})

	t.Run("NotParticipant", func(t *testing.T) {
		env := newDuelTestEnv()
		challenge := env.runToActive(t, "CCTF{answer}")

		_, err := env.svc.SubmitFlag(ctx, challenge.ID, "carol", "CCTF{answer}")
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("PendingChallenge", func(t *testing.T) {
		env := newDuelTestEnv()
		env.fund("alice", 300)

		challenge, err := env.svc.CreateChallenge(ctx, "alice", 100, nil, nil, nil)
		require.NoError(t, err)

		_, err = env.svc.SubmitFlag(ctx, challenge.ID, "alice", "CCTF{answer}")
		assert.ErrorIs(t, err, ErrWrongState)
	})
}

func TestSubmitFlag_IncorrectFlag(t *testing.T) {
	ctx := context.Background()
	env := newDuelTestEnv()
	challenge := env.runToActive(t, "CCTF{answer}")

	result, err := env.svc.SubmitFlag(ctx, challenge.ID, "bob", "CCTF{nope}")
	require.NoError(t, err)
	assert.False(t, result.Correct)
	assert.False(t, result.IsWinner)

	// The duel stays active and the attempt is recorded
	stored, err := env.store.Get(ctx, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeActive, stored.Status)
	for _, p := range stored.Participants {
		if p.UserID == "bob" {
			require.NotNil(t, p.SubmittedFlag)
			assert.Equal(t, "CCTF{nope}", *p.SubmittedFlag)
		}
	}
}

func TestSubmitFlag_WinnerTakesBothStakes(t *testing.T) {
	ctx := context.Background()
	env := newDuelTestEnv()
	challenge := env.runToActive(t, "CCTF{answer}")

	result, err := env.svc.SubmitFlag(ctx, challenge.ID, "bob", "CCTF{answer}")
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.True(t, result.IsWinner)
	assert.Equal(t, 200, result.Prize)

	// Opponent nets +stake, challenger nets -stake
	assert.Equal(t, 400, env.ledger.balance("bob"))
	assert.Equal(t, 200, env.ledger.balance("alice"))

	stored, err := env.store.Get(ctx, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeCompleted, stored.Status)
	require.NotNil(t, stored.WinnerID)
	assert.Equal(t, "bob", *stored.WinnerID)
	require.NotNil(t, stored.CompletedAt)

	winners := 0
	for _, p := range stored.Participants {
		if p.IsWinner {
			winners++
			assert.Equal(t, "bob", p.UserID)
			assert.Equal(t, 200, p.PrizeReceived)
		} else {
			assert.Equal(t, 0, p.PrizeReceived)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestSubmitFlag_ConcurrentCorrectSubmissions(t *testing.T) {
	ctx := context.Background()
	env := newDuelTestEnv()
	challenge := env.runToActive(t, "CCTF{answer}")

	totalBefore := env.ledger.total()

	const rounds = 20
	results := make([]*SubmitResult, rounds)
	errs := make([]error, rounds)

	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := "alice"
			if i%2 == 0 {
				user = "bob"
			}
			results[i], errs[i] = env.svc.SubmitFlag(ctx, challenge.ID, user, "CCTF{answer}")
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < rounds; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		if results[i].IsWinner && !results[i].AlreadyDecided {
			winners++
		} else {
			assert.True(t, results[i].AlreadyDecided)
		}
	}
	assert.Equal(t, 1, winners, "exactly one submission wins the resolution race")

	// Payout fired exactly once: the escrowed 200 return once, not per retry
	assert.Equal(t, totalBefore+200, env.ledger.total())

	stored, err := env.store.Get(ctx, challenge.ID)
	require.NoError(t, err)
	winnerRows := 0
	for _, p := range stored.Participants {
		if p.IsWinner {
			winnerRows++
			assert.Equal(t, 200, p.PrizeReceived)
		}
	}
	assert.Equal(t, 1, winnerRows)
}

func TestSubmitFlag_DoubleSubmitAfterWin(t *testing.T) {
	ctx := context.Background()
	env := newDuelTestEnv()
	challenge := env.runToActive(t, "CCTF{answer}")

	first, err := env.svc.SubmitFlag(ctx, challenge.ID, "bob", "CCTF{answer}")
	require.NoError(t, err)
	require.True(t, first.IsWinner)
	balanceAfterWin := env.ledger.balance("bob")

	// Client retry of the same correct flag must not pay twice
	second, err := env.svc.SubmitFlag(ctx, challenge.ID, "bob", "CCTF{answer}")
	require.NoError(t, err)
	assert.True(t, second.AlreadyDecided)
	assert.True(t, second.IsWinner)
	assert.Equal(t, 0, second.Prize)
	assert.Equal(t, balanceAfterWin, env.ledger.balance("bob"))
}

func TestSubmitFlag_LoserAfterDecision(t *testing.T) {
	ctx := context.Background()
	env := newDuelTestEnv()
	challenge := env.runToActive(t, "CCTF{answer}")

	_, err := env.svc.SubmitFlag(ctx, challenge.ID, "bob", "CCTF{answer}")
	require.NoError(t, err)

	result, err := env.svc.SubmitFlag(ctx, challenge.ID, "alice", "CCTF{answer}")
	require.NoError(t, err)
	assert.True(t, result.AlreadyDecided)
	assert.True(t, result.Correct)
	assert.False(t, result.IsWinner)
	assert.Equal(t, 200, env.ledger.balance("alice"))
}

func TestEscrowConservation(t *testing.T) {
	ctx := context.Background()

	t.Run("CompletedDuel", func(t *testing.T) {
		env := newDuelTestEnv()
		challenge := env.runToActive(t, "CCTF{answer}")
		total := env.ledger.total()

		_, err := env.svc.SubmitFlag(ctx, challenge.ID, "alice", "CCTF{answer}")
		require.NoError(t, err)
		assert.Equal(t, total+200, env.ledger.total(), "escrowed stakes return to circulation on payout")
	})

	t.Run("CancelledPending", func(t *testing.T) {
		env := newDuelTestEnv()
		env.fund("alice", 300)

		challenge, err := env.svc.CreateChallenge(ctx, "alice", 100, nil, nil, nil)
		require.NoError(t, err)
		_, err = env.svc.CancelChallenge(ctx, challenge.ID, "alice")
		require.NoError(t, err)

		assert.Equal(t, 300, env.ledger.balance("alice"), "cancellation is net zero")
	})
}

func TestSubmitFlag_TrimsWhitespace(t *testing.T) {
	ctx := context.Background()
	env := newDuelTestEnv()
	challenge := env.runToActive(t, "CCTF{answer}")

	result, err := env.svc.SubmitFlag(ctx, challenge.ID, "bob", "  CCTF{answer}\n")
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.True(t, result.IsWinner)
}

func TestSubmitFlag_RecordsSubmissionTime(t *testing.T) {
	ctx := context.Background()
	env := newDuelTestEnv()
	challenge := env.runToActive(t, "CCTF{answer}")

	submitTime := env.clock.Add(2 * time.Minute)
	env.clock = submitTime

	_, err := env.svc.SubmitFlag(ctx, challenge.ID, "bob", "CCTF{answer}")
	require.NoError(t, err)

	stored, err := env.store.Get(ctx, challenge.ID)
	require.NoError(t, err)
	for _, p := range stored.Participants {
		if p.UserID == "bob" {
			require.NotNil(t, p.SubmittedAt)
			assert.Equal(t, submitTime, *p.SubmittedAt)
		}
	}
}
