package service

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"

	"github.com/yourusername/brigada-api/internal/domain/entity"
)

// EmailService уведомляет очередь ревью о принятых документах
// с низкой уверенностью OCR.
type EmailService interface {
	SendLowConfidenceAlert(ctx context.Context, document *entity.Document) error
}

// NoopEmailService используется, когда уведомления отключены.
type NoopEmailService struct{}

func (s *NoopEmailService) SendLowConfidenceAlert(ctx context.Context, document *entity.Document) error {
	log.Printf("[EmailService] noop low confidence alert document=%s", document.DocumentID)
	return nil
}

// ResendEmailService отправляет письма через Resend REST API.
type ResendEmailService struct {
	from          string
	reviewAddress string
	client        *resend.Client
}

// NewResendEmailService создает новый почтовый сервис
func NewResendEmailService(apiKey, from, reviewAddress string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	if reviewAddress == "" {
		return nil, fmt.Errorf("review address is required")
	}
	return &ResendEmailService{
		from:          from,
		reviewAddress: reviewAddress,
		client:        resend.NewClient(apiKey),
	}, nil
}

// SendLowConfidenceAlert отправляет уведомление о документе,
// требующем ручной проверки
func (s *ResendEmailService) SendLowConfidenceAlert(ctx context.Context, document *entity.Document) error {
	confidence := "n/a"
	if document.OCRConfidence != nil {
		confidence = fmt.Sprintf("%.2f", *document.OCRConfidence)
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.reviewAddress},
		Subject: fmt.Sprintf("Low OCR confidence document %s", document.DocumentID),
		Text: fmt.Sprintf(
			"Document %s (%s, %s) was accepted with OCR confidence %s.\nResponse client_id: %s\nUser: %d",
			document.DocumentID, document.DocumentType, document.FileName,
			confidence, document.ResponseClientID, document.UserID,
		),
	}

	// Идемпотентность на стороне Resend: повторная отправка за тот же
	// документ не продублирует письмо
	options := &resend.SendEmailOptions{
		IdempotencyKey: "low-confidence/" + document.DocumentID,
	}

	if _, err := s.client.Emails.SendWithOptions(ctx, params, options); err != nil {
		return fmt.Errorf("failed to send low confidence alert: %w", err)
	}
	return nil
}
