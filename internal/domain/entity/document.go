package entity

import (
	"time"
)

// Статусы загрузки документа
const (
	DocumentStatusPending  = "pending"
	DocumentStatusUploaded = "uploaded"
	DocumentStatusError    = "error"
)

// Типы документов
const (
	DocumentTypeIDCard    = "id_card"
	DocumentTypeReceipt   = "receipt"
	DocumentTypeForm      = "form"
	DocumentTypeSignature = "signature"
	DocumentTypePhoto     = "photo"
)

// Document представляет файл, загружаемый клиентом напрямую в объектное
// хранилище по pre-signed URL. Сервер хранит только метаданные.
//
// Жизненный цикл:
//  1. POST /mobile/documents/upload  -> запись создана (status = pending)
//  2. Клиент загружает файл по upload_url
//  3. POST /mobile/documents/confirm -> status = uploaded, remote_url заполнен
type Document struct {
	ID uint `gorm:"primaryKey" json:"-"`

	// Уникальный идентификатор, генерируемый сервером (doc_<hex>)
	DocumentID string `gorm:"size:64;not null;uniqueIndex" json:"document_id"`

	// Пользователь, инициировавший загрузку
	UserID uint `gorm:"not null;index" json:"user_id"`

	// Привязка к ответу через его client_id
	ResponseClientID string `gorm:"size:64;not null;index" json:"response_client_id"`

	// Необязательная привязка к вопросу
	QuestionID *uint `json:"question_id,omitempty"`

	// Метаданные файла
	FileName     string `gorm:"size:255;not null" json:"file_name"`
	FileSize     int64  `gorm:"not null" json:"file_size"`
	MimeType     string `gorm:"size:100;not null" json:"mime_type"`
	DocumentType string `gorm:"size:50;not null" json:"document_type"`

	// OCR метаданные (заполняются клиентом, сервер OCR не выполняет)
	OCRConfidence *float64 `json:"ocr_confidence,omitempty"`
	OCRText       string   `gorm:"type:text" json:"ocr_text,omitempty"`
	PageNumber    *int     `json:"page_number,omitempty"`

	// Ссылка в хранилище (заполняется при подтверждении)
	RemoteURL string `gorm:"type:text" json:"remote_url,omitempty"`

	// pending | uploaded | error
	Status string `gorm:"size:20;not null;default:pending;index" json:"status"`

	// Срок действия pre-signed URL; после истечения URL невалиден
	// на стороне хранилища и не продлевается
	UploadExpiresAt time.Time  `gorm:"not null" json:"upload_expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (Document) TableName() string {
	return "documents"
}

// OCRRequiredForType сообщает, ожидается ли распознавание текста
// для данного типа документа
func OCRRequiredForType(documentType string) bool {
	switch documentType {
	case DocumentTypeIDCard, DocumentTypeReceipt, DocumentTypeForm:
		return true
	}
	return false
}
