package models

import "time"

// ChallengeStatus represents the lifecycle state of a duel challenge
type ChallengeStatus string

const (
	ChallengePending   ChallengeStatus = "pending"
	ChallengeAccepted  ChallengeStatus = "accepted"
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeCancelled ChallengeStatus = "cancelled"
)

// Challenge represents a peer-vs-peer duel where two users stake coins on who
// solves a cryptography task first. OpponentID stays null while the duel is
// open to any opponent; TaskID is only assigned when the duel becomes active.
type Challenge struct {
	ID           string          `gorm:"type:uuid;primary_key" json:"id"`
	ChallengerID string          `gorm:"type:uuid;not null;column:challenger_id" json:"challenger_id"`
	OpponentID   *string         `gorm:"type:uuid;column:opponent_id" json:"opponent_id"`
	CategoryID   *string         `gorm:"type:uuid;column:category_id" json:"category_id"`
	Difficulty   *string         `gorm:"type:varchar(20)" json:"difficulty"`
	Stake        int             `gorm:"type:integer;not null" json:"stake"`
	Status       ChallengeStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TaskID       *string         `gorm:"type:uuid;column:task_id" json:"task_id"`
	WinnerID     *string         `gorm:"type:uuid;column:winner_id" json:"winner_id"`
	StartedAt    *time.Time      `gorm:"type:timestamp;column:started_at" json:"started_at"`
	CompletedAt  *time.Time      `gorm:"type:timestamp;column:completed_at" json:"completed_at"`
	ExpiresAt    time.Time       `gorm:"type:timestamp;not null;column:expires_at" json:"expires_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Challenger   *User                   `gorm:"foreignKey:ChallengerID" json:"challenger,omitempty"`
	Task         *DuelTask               `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Participants []*ChallengeParticipant `gorm:"foreignKey:ChallengeID" json:"participants,omitempty"`
}
