package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"gopherqa/internal/model"
)

type QuestionRepository struct {
	db *gorm.DB
}

// QuestionWithUser is one history row in the privileged all-users listing.
type QuestionWithUser struct {
	Username  string    `json:"username"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) Create(record *model.Question) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("create question failed: %w", err)
	}
	return nil
}

// ListByUserID returns the user's records, newest first.
func (r *QuestionRepository) ListByUserID(userID uint) ([]model.Question, error) {
	var records []model.Question
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list questions failed: %w", err)
	}
	return records, nil
}

// ListAllWithUsers returns every record joined with its owner's handle, newest first.
func (r *QuestionRepository) ListAllWithUsers() ([]QuestionWithUser, error) {
	var rows []QuestionWithUser
	err := r.db.Model(&model.Question{}).
		Select("users.username, questions.question, questions.answer, questions.created_at").
		Joins("JOIN users ON questions.user_id = users.id").
		Order("questions.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list all questions failed: %w", err)
	}
	return rows, nil
}
