package models

import "time"

// ChallengeParticipant represents one side of an accepted duel challenge.
// Exactly two rows exist once a challenge reaches accepted; at most one row
// ever carries IsWinner = true.
type ChallengeParticipant struct {
	ID            string     `gorm:"type:uuid;primary_key" json:"id"`
	ChallengeID   string     `gorm:"type:uuid;not null;column:challenge_id;index" json:"challenge_id"`
	UserID        string     `gorm:"type:uuid;not null;column:user_id" json:"user_id"`
	SubmittedFlag *string    `gorm:"type:varchar(255);column:submitted_flag" json:"submitted_flag"`
	SubmittedAt   *time.Time `gorm:"type:timestamp;column:submitted_at" json:"submitted_at"`
	IsWinner      bool       `gorm:"not null;default:false;column:is_winner" json:"is_winner"`
	PrizeReceived int        `gorm:"type:integer;not null;default:0;column:prize_received" json:"prize_received"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
