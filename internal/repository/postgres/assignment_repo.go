package postgres

import (
	"gorm.io/gorm"

	"github.com/yourusername/brigada-api/internal/domain/entity"
)

// AssignmentRepo реализует repository.AssignmentRepository
type AssignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo создает новый репозиторий назначений
func NewAssignmentRepo(db *gorm.DB) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

// GetByUser возвращает все назначения пользователя с анкетами
func (r *AssignmentRepo) GetByUser(userID uint) ([]entity.Assignment, error) {
	var assignments []entity.Assignment
	err := r.db.Preload("Survey").
		Where("user_id = ?", userID).
		Order("id").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// CountByUser возвращает количество назначений пользователя
func (r *AssignmentRepo) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Assignment{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
