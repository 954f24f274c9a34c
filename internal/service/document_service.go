package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/brigada-api/internal/domain/entity"
	"github.com/yourusername/brigada-api/internal/domain/repository"
	apperrors "github.com/yourusername/brigada-api/internal/pkg/errors"
	"github.com/yourusername/brigada-api/pkg/storage"
)

// MaxDocumentSize - максимальный размер файла (10 MiB), включительно
const MaxDocumentSize = 10 * 1024 * 1024

// Разрешенные mime-типы загружаемых файлов
var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// DocumentMetadata - метаданные загружаемого документа от клиента
type DocumentMetadata struct {
	DocumentType  string
	QuestionID    *uint
	OCRConfidence *float64
	OCRText       string
	PageNumber    *int
}

// UploadRequest - запрос на выдачу pre-signed URL
type UploadRequest struct {
	ClientID string
	FileName string
	FileSize int64
	MimeType string
	Metadata DocumentMetadata
}

// UploadGrant - выданное разрешение на загрузку
type UploadGrant struct {
	DocumentID           string    `json:"document_id"`
	UploadURL            string    `json:"upload_url"`
	ExpiresAt            time.Time `json:"expires_at"`
	OCRRequired          bool      `json:"ocr_required"`
	LowConfidenceWarning bool      `json:"low_confidence_warning"`
}

// DocumentService - брокер двухфазной загрузки документов.
// Фаза 1: RequestUpload валидирует метаданные и выдает pre-signed URL.
// Фаза 2: клиент грузит файл напрямую в хранилище и вызывает Confirm.
// Сервис не проверяет, что загрузка действительно произошла.
type DocumentService struct {
	documentRepo repository.DocumentRepository
	responseRepo repository.ResponseRepository
	presigner    storage.Presigner
	emailService EmailService
	uploadTTL    time.Duration
}

// NewDocumentService создает новый сервис документов
func NewDocumentService(
	documentRepo repository.DocumentRepository,
	responseRepo repository.ResponseRepository,
	presigner storage.Presigner,
	emailService EmailService,
	uploadTTL time.Duration,
) *DocumentService {
	if uploadTTL <= 0 {
		uploadTTL = 30 * time.Minute
	}
	return &DocumentService{
		documentRepo: documentRepo,
		responseRepo: responseRepo,
		presigner:    presigner,
		emailService: emailService,
		uploadTTL:    uploadTTL,
	}
}

// RequestUpload валидирует запрос и выдает pre-signed URL со сроком
// действия 30 минут. Документ привязывается к уже сохраненному ответу
// вызывающего (строгая политика существования): client_id, не
// разрешающийся через индекс дубликатов, дает ErrResponseNotFound.
func (s *DocumentService) RequestUpload(userID uint, req UploadRequest) (*UploadGrant, error) {
	if req.FileSize > MaxDocumentSize {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrFileTooLarge, req.FileSize, MaxDocumentSize)
	}
	if !allowedMimeTypes[req.MimeType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMimeType, req.MimeType)
	}

	// Ответ должен существовать и принадлежать вызывающему
	if _, err := s.responseRepo.GetByClientID(userID, req.ClientID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrResponseNotFound, req.ClientID)
		}
		return nil, err
	}

	ocrRequired := entity.OCRRequiredForType(req.Metadata.DocumentType)
	lowConfidence := ocrRequired &&
		req.Metadata.OCRConfidence != nil &&
		*req.Metadata.OCRConfidence < OCRConfidenceThreshold

	documentID := newDocumentID()
	expiresAt := time.Now().Add(s.uploadTTL)

	key := fmt.Sprintf("documents/%d/%s/%s", userID, documentID, req.FileName)
	uploadURL, err := s.presigner.PresignUpload(key, req.MimeType, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload URL: %w", err)
	}

	document := &entity.Document{
		DocumentID:       documentID,
		UserID:           userID,
		ResponseClientID: req.ClientID,
		QuestionID:       req.Metadata.QuestionID,
		FileName:         req.FileName,
		FileSize:         req.FileSize,
		MimeType:         req.MimeType,
		DocumentType:     req.Metadata.DocumentType,
		OCRConfidence:    req.Metadata.OCRConfidence,
		OCRText:          req.Metadata.OCRText,
		PageNumber:       req.Metadata.PageNumber,
		Status:           entity.DocumentStatusPending,
		UploadExpiresAt:  expiresAt,
	}
	if err := s.documentRepo.Create(document); err != nil {
		return nil, err
	}

	// Документ с низкой уверенностью принимается, но очередь ревью
	// уведомляется. Сбой отправки не влияет на результат запроса.
	if lowConfidence && s.emailService != nil {
		go func(doc entity.Document) {
			if err := s.emailService.SendLowConfidenceAlert(context.Background(), &doc); err != nil {
				log.Printf("[DocumentService] Не удалось отправить уведомление о документе %s: %v", doc.DocumentID, err)
			}
		}(*document)
	}

	return &UploadGrant{
		DocumentID:           documentID,
		UploadURL:            uploadURL,
		ExpiresAt:            expiresAt,
		OCRRequired:          ocrRequired,
		LowConfidenceWarning: lowConfidence,
	}, nil
}

// Confirm подтверждает завершение загрузки: документ переходит
// pending -> uploaded. Чужой или неизвестный document_id дает ErrNotFound.
func (s *DocumentService) Confirm(userID uint, documentID string, remoteURL string) error {
	document, err := s.documentRepo.GetByDocumentID(documentID)
	if err != nil {
		return err
	}
	if document.UserID != userID {
		return apperrors.ErrNotFound
	}
	return s.documentRepo.MarkUploaded(documentID, remoteURL)
}

// newDocumentID генерирует серверный идентификатор документа (doc_<hex12>)
func newDocumentID() string {
	hexID := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "doc_" + hexID[:12]
}
