package models

// DuelTask represents a timed cryptography task that duel participants race to solve.
// The Flag column holds the expected answer and is never serialized.
type DuelTask struct {
	ID          string    `gorm:"type:uuid;default:gen_random_uuid();primary_key" json:"id"`
	Title       string    `gorm:"type:varchar(100);not null" json:"title"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	Flag        string    `gorm:"type:varchar(255);not null" json:"-"`
	CategoryID  *string   `gorm:"type:uuid;column:category_id" json:"category_id"`
	Difficulty  string    `gorm:"type:varchar(20);not null" json:"difficulty"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
