package models

// Category represents a cryptography topic grouping duel tasks and levels
type Category struct {
	ID          string      `gorm:"type:uuid;default:gen_random_uuid();primary_key" json:"id"`
	Name        string      `gorm:"type:varchar(100);unique;not null" json:"name"`
	Description string      `gorm:"type:varchar(255)" json:"description"`
	Tasks       []*DuelTask `gorm:"foreignKey:CategoryID" json:"tasks,omitempty"`
}
