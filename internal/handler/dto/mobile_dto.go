package dto

import (
	"time"

	"github.com/yourusername/brigada-api/internal/domain/entity"
)

// AnswerPayload представляет один ответ на вопрос внутри элемента батча
type AnswerPayload struct {
	QuestionID  uint               `json:"question_id" binding:"required"`
	AnswerValue entity.AnswerValue `json:"answer_value"`
	MediaURL    string             `json:"media_url,omitempty"`
	AnsweredAt  *time.Time         `json:"answered_at,omitempty"`
}

// ResponsePayload представляет один ответ анкеты в батче синхронизации
type ResponsePayload struct {
	ClientID    string           `json:"client_id" binding:"required,max=64"`
	VersionID   uint             `json:"version_id" binding:"required"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Location    *entity.Location `json:"location,omitempty"`
	DeviceInfo  entity.JSONMap   `json:"device_info,omitempty"`
	Answers     []AnswerPayload  `json:"answers"`
}

// ToEntity преобразует payload в доменную сущность
func (p *ResponsePayload) ToEntity() entity.SurveyResponse {
	answers := make([]entity.QuestionAnswer, 0, len(p.Answers))
	for _, a := range p.Answers {
		answers = append(answers, entity.QuestionAnswer{
			QuestionID: a.QuestionID,
			Value:      a.AnswerValue,
			MediaURL:   a.MediaURL,
			AnsweredAt: a.AnsweredAt,
		})
	}
	return entity.SurveyResponse{
		ClientID:    p.ClientID,
		VersionID:   p.VersionID,
		StartedAt:   p.StartedAt,
		CompletedAt: p.CompletedAt,
		Location:    p.Location,
		DeviceInfo:  p.DeviceInfo,
		Answers:     answers,
	}
}

// BatchSubmitRequest представляет запрос пакетной синхронизации ответов.
// Границы размера батча проверяются и здесь (binding), и в сервисе.
type BatchSubmitRequest struct {
	Responses []ResponsePayload `json:"responses" binding:"required,min=1,max=50,dive"`
}

// DocumentMetadataPayload представляет метаданные документа от клиента
type DocumentMetadataPayload struct {
	DocumentType  string   `json:"document_type" binding:"required,max=50"`
	QuestionID    *uint    `json:"question_id,omitempty"`
	OCRConfidence *float64 `json:"ocr_confidence,omitempty" binding:"omitempty,min=0,max=1"`
	OCRText       string   `json:"ocr_text,omitempty"`
	PageNumber    *int     `json:"page_number,omitempty"`
}

// DocumentUploadRequest представляет запрос на выдачу pre-signed URL
type DocumentUploadRequest struct {
	ClientID string                  `json:"client_id" binding:"required,max=64"`
	FileName string                  `json:"file_name" binding:"required,max=255"`
	FileSize int64                   `json:"file_size" binding:"required,min=1"`
	MimeType string                  `json:"mime_type" binding:"required"`
	Metadata DocumentMetadataPayload `json:"metadata" binding:"required"`
}

// DocumentConfirmRequest представляет подтверждение завершенной загрузки
type DocumentConfirmRequest struct {
	DocumentID string `json:"document_id" binding:"required"`
	RemoteURL  string `json:"remote_url,omitempty" binding:"omitempty,max=1024"`
}

// AnswerResponse представляет сохраненный ответ на вопрос
type AnswerResponse struct {
	QuestionID  uint               `json:"question_id"`
	AnswerValue entity.AnswerValue `json:"answer_value"`
	MediaURL    string             `json:"media_url,omitempty"`
	AnsweredAt  *time.Time         `json:"answered_at,omitempty"`
}

// ResponseView представляет сохраненный ответ анкеты в формате для клиента
type ResponseView struct {
	ID          uint             `json:"id"`
	ClientID    string           `json:"client_id"`
	VersionID   uint             `json:"version_id"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Location    *entity.Location `json:"location,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	Answers     []AnswerResponse `json:"answers"`
}

// NewResponseView создает DTO для сохраненного ответа
func NewResponseView(r *entity.SurveyResponse) *ResponseView {
	answers := make([]AnswerResponse, 0, len(r.Answers))
	for _, a := range r.Answers {
		answers = append(answers, AnswerResponse{
			QuestionID:  a.QuestionID,
			AnswerValue: a.Value,
			MediaURL:    a.MediaURL,
			AnsweredAt:  a.AnsweredAt,
		})
	}
	return &ResponseView{
		ID:          r.ID,
		ClientID:    r.ClientID,
		VersionID:   r.VersionID,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
		Location:    r.Location,
		CreatedAt:   r.CreatedAt,
		Answers:     answers,
	}
}

// NewListResponseView создает список DTO для сохраненных ответов
func NewListResponseView(responses []entity.SurveyResponse) []*ResponseView {
	views := make([]*ResponseView, 0, len(responses))
	for i := range responses {
		views = append(views, NewResponseView(&responses[i]))
	}
	return views
}
