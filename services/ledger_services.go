package services

import (
	"context"
	"fmt"
	"time"

	"api/metrics"

	"gorm.io/gorm"
)

// Ledger is the atomic coin balance store consumed by the duel engine. The
// engine never mutates balances directly: every stake escrow, refund and
// payout goes through Debit/Credit. WithTx binds the ledger to a surrounding
// transaction so coin movement commits or rolls back together with the state
// transition it belongs to.
type Ledger interface {
	Debit(ctx context.Context, userID string, amount int) error
	Credit(ctx context.Context, userID string, amount int) error
	WithTx(tx *gorm.DB) Ledger
}

// CoinLedger implements Ledger over the users table
type CoinLedger struct {
	db *gorm.DB
}

func NewCoinLedger(db *gorm.DB) *CoinLedger {
	return &CoinLedger{db: db}
}

func (l *CoinLedger) WithTx(tx *gorm.DB) Ledger {
	return &CoinLedger{db: tx}
}

// Debit removes coins from a user's balance. The balance check and the
// subtraction are one guarded statement, so two concurrent debits can never
// overdraw the account.
func (l *CoinLedger) Debit(ctx context.Context, userID string, amount int) error {
	start := time.Now()
	defer metrics.RecordDBOperation("debit", "users", start)

	res := l.db.WithContext(ctx).Exec(
		`UPDATE users SET coins = coins - ? WHERE id = ? AND coins >= ?`,
		amount, userID, amount,
	)
	if res.Error != nil {
		return fmt.Errorf("ledger debit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

// Credit adds coins to a user's balance
func (l *CoinLedger) Credit(ctx context.Context, userID string, amount int) error {
	start := time.Now()
	defer metrics.RecordDBOperation("credit", "users", start)

	res := l.db.WithContext(ctx).Exec(
		`UPDATE users SET coins = coins + ? WHERE id = ?`,
		amount, userID,
	)
	if res.Error != nil {
		return fmt.Errorf("ledger credit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("ledger credit: user %s not found", userID)
	}
	return nil
}
