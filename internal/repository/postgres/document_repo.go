package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/brigada-api/internal/domain/entity"
	apperrors "github.com/yourusername/brigada-api/internal/pkg/errors"
)

// DocumentRepo реализует repository.DocumentRepository
type DocumentRepo struct {
	db *gorm.DB
}

// NewDocumentRepo создает новый репозиторий документов
func NewDocumentRepo(db *gorm.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Create создает запись о документе (status = pending)
func (r *DocumentRepo) Create(document *entity.Document) error {
	return r.db.Create(document).Error
}

// GetByDocumentID возвращает документ по его серверному идентификатору
func (r *DocumentRepo) GetByDocumentID(documentID string) (*entity.Document, error) {
	var document entity.Document
	err := r.db.Where("document_id = ?", documentID).First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &document, nil
}

// MarkUploaded переводит документ pending -> uploaded.
// RowsAffected == 0 означает, что документ не найден или уже подтвержден.
func (r *DocumentRepo) MarkUploaded(documentID string, remoteURL string) error {
	result := r.db.Model(&entity.Document{}).
		Where("document_id = ? AND status = ?", documentID, entity.DocumentStatusPending).
		Updates(map[string]interface{}{
			"status":       entity.DocumentStatusUploaded,
			"remote_url":   remoteURL,
			"confirmed_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CountPendingByUser возвращает количество неподтвержденных документов пользователя
func (r *DocumentRepo) CountPendingByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Document{}).
		Where("user_id = ? AND status = ?", userID, entity.DocumentStatusPending).
		Count(&count).Error
	return count, err
}

// GetByResponseClientID возвращает документы, привязанные к ответу пользователя
func (r *DocumentRepo) GetByResponseClientID(userID uint, clientID string) ([]entity.Document, error) {
	var documents []entity.Document
	err := r.db.Where("user_id = ? AND response_client_id = ?", userID, clientID).
		Order("id").
		Find(&documents).Error
	if err != nil {
		return nil, err
	}
	return documents, nil
}
