package models

import "time"

// User represents a platform member with a coin balance used for duel stakes
type User struct {
	ID            string     `gorm:"type:uuid;default:gen_random_uuid();primary_key" json:"id"`
	Email         string     `gorm:"type:varchar(100);unique;not null" json:"email"`
	Username      string     `gorm:"type:varchar(50);unique;not null" json:"username"`
	Password      string     `gorm:"type:varchar(255);not null" json:"-"`
	Coins         int        `gorm:"type:integer;not null;default:0" json:"coins"`
	Hints         int        `gorm:"type:integer;not null;default:0" json:"hints"`
	IsAdmin       bool       `gorm:"not null;default:false" json:"is_admin"`
	Blocked       bool       `gorm:"not null;default:false" json:"blocked"`
	LastConnected *time.Time `gorm:"type:timestamp" json:"last_connected"`
}
