package repository

import (
	"github.com/yourusername/brigada-api/internal/domain/entity"
)

// DocumentRepository определяет методы для работы с метаданными документов
type DocumentRepository interface {
	Create(document *entity.Document) error
	GetByDocumentID(documentID string) (*entity.Document, error)
	// MarkUploaded переводит документ pending -> uploaded и сохраняет remote_url
	MarkUploaded(documentID string, remoteURL string) error
	CountPendingByUser(userID uint) (int64, error)
	GetByResponseClientID(userID uint, clientID string) ([]entity.Document, error)
}
