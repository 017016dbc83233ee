package app

import (
	"context"
	"log"

	"gopherqa/internal/model"
	"gopherqa/internal/repository"
)

// QuestionStore is the read surface the history view needs.
type QuestionStore interface {
	ListByUserID(userID uint) ([]model.Question, error)
	ListAllWithUsers() ([]repository.QuestionWithUser, error)
}

// HistoryReadCache is the cache surface for own-history listings.
type HistoryReadCache interface {
	GetHistory(ctx context.Context, userID uint) ([]model.Question, bool, error)
	SetHistory(ctx context.Context, userID uint, records []model.Question) error
	IsDirty(ctx context.Context, userID uint) (bool, error)
}

type HistoryService struct {
	questions     QuestionStore
	cache         HistoryReadCache
	adminUsername string
}

// HistoryView is either the caller's own records or, for the privileged
// account, everyone's records joined with handles.
type HistoryView struct {
	Privileged bool                          `json:"privileged"`
	Own        []model.Question              `json:"own,omitempty"`
	Everyone   []repository.QuestionWithUser `json:"everyone,omitempty"`
}

func NewHistoryService(questions QuestionStore, cache HistoryReadCache, adminUsername string) *HistoryService {
	if adminUsername == "" {
		adminUsername = "admin"
	}
	return &HistoryService{
		questions:     questions,
		cache:         cache,
		adminUsername: adminUsername,
	}
}

// List returns the history view for the caller, newest records first.
func (s *HistoryService) List(ctx context.Context, userID uint, username string) (*HistoryView, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	if username == s.adminUsername {
		rows, err := s.questions.ListAllWithUsers()
		if err != nil {
			return nil, err
		}
		return &HistoryView{Privileged: true, Everyone: rows}, nil
	}

	if s.cache != nil {
		if dirty, err := s.cache.IsDirty(ctx, userID); err == nil && !dirty {
			if cached, hit, cacheErr := s.cache.GetHistory(ctx, userID); cacheErr == nil && hit {
				return &HistoryView{Own: cached}, nil
			}
		}
	}

	records, err := s.questions.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if dirty, dirtyErr := s.cache.IsDirty(ctx, userID); dirtyErr == nil && !dirty {
			if err := s.cache.SetHistory(ctx, userID, records); err != nil {
				log.Printf("cache history failed: %v", err)
			}
		}
	}
	return &HistoryView{Own: records}, nil
}
