package services

import (
	"context"
	"errors"
	"fmt"

	"api/models"

	"gorm.io/gorm"
)

// TaskPool picks a duel task matching the challenge's optional category and
// difficulty filters. A nil filter means "any".
type TaskPool interface {
	PickTask(ctx context.Context, categoryID *string, difficulty *string) (*models.DuelTask, error)
}

// GormTaskPool implements TaskPool over the duel_tasks table
type GormTaskPool struct {
	db *gorm.DB
}

func NewGormTaskPool(db *gorm.DB) *GormTaskPool {
	return &GormTaskPool{db: db}
}

func (p *GormTaskPool) PickTask(ctx context.Context, categoryID *string, difficulty *string) (*models.DuelTask, error) {
	query := p.db.WithContext(ctx).Model(&models.DuelTask{})
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	if difficulty != nil {
		query = query.Where("difficulty = ?", *difficulty)
	}

	var task models.DuelTask
	if err := query.Order("random()").First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoTaskAvailable
		}
		return nil, fmt.Errorf("failed to pick duel task: %w", err)
	}
	return &task, nil
}
