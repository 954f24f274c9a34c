package repository

import (
	"github.com/yourusername/brigada-api/internal/domain/entity"
)

// AssignmentRepository определяет методы чтения назначений бригадиста
type AssignmentRepository interface {
	GetByUser(userID uint) ([]entity.Assignment, error)
	CountByUser(userID uint) (int64, error)
}
