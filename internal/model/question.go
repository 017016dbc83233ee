package model

import "time"

// Question is one answered question/answer pair. Records are immutable after
// creation and are never deleted through the exposed interface.
type Question struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}
