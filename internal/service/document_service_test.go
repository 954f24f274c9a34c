package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/brigada-api/internal/domain/entity"
	apperrors "github.com/yourusername/brigada-api/internal/pkg/errors"
)

// ============================================================================
// Тесты для DocumentService
// ============================================================================

func createTestDocumentService(
	documentRepo *MockDocumentRepository,
	responseRepo *MockResponseRepository,
	presigner *MockPresigner,
	emailService EmailService,
) *DocumentService {
	return NewDocumentService(documentRepo, responseRepo, presigner, emailService, 30*time.Minute)
}

func floatPtr(v float64) *float64 { return &v }

func validUploadRequest() UploadRequest {
	return UploadRequest{
		ClientID: "client-1",
		FileName: "receipt.jpg",
		FileSize: 1024,
		MimeType: "image/jpeg",
		Metadata: DocumentMetadata{DocumentType: entity.DocumentTypeReceipt},
	}
}

func TestDocumentService_RequestUpload_Success(t *testing.T) {
	// Arrange
	mockDocumentRepo := new(MockDocumentRepository)
	mockResponseRepo := new(MockResponseRepository)
	mockPresigner := new(MockPresigner)

	existing := &entity.SurveyResponse{ID: 1, ClientID: "client-1", UserID: 7}
	mockResponseRepo.On("GetByClientID", uint(7), "client-1").Return(existing, nil)
	mockPresigner.On("PresignUpload", mock.Anything, "image/jpeg", mock.Anything).
		Return("https://storage/upload/key?signature=abc", nil)
	mockDocumentRepo.On("Create", mock.AnythingOfType("*entity.Document")).Return(nil)

	svc := createTestDocumentService(mockDocumentRepo, mockResponseRepo, mockPresigner, nil)

	// Act
	grant, err := svc.RequestUpload(7, validUploadRequest())

	// Assert
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(grant.DocumentID, "doc_"), "идентификатор должен иметь префикс doc_")
	assert.Len(t, grant.DocumentID, len("doc_")+12)
	assert.Equal(t, "https://storage/upload/key?signature=abc", grant.UploadURL)
	assert.True(t, grant.OCRRequired, "receipt требует OCR")
	assert.False(t, grant.LowConfidenceWarning)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), grant.ExpiresAt, 5*time.Second)
	mockDocumentRepo.AssertExpectations(t)
}

func TestDocumentService_RequestUpload_FileSizeBoundary(t *testing.T) {
	mockDocumentRepo := new(MockDocumentRepository)
	mockResponseRepo := new(MockResponseRepository)
	mockPresigner := new(MockPresigner)

	existing := &entity.SurveyResponse{ID: 1, ClientID: "client-1", UserID: 7}
	mockResponseRepo.On("GetByClientID", uint(7), "client-1").Return(existing, nil)
	mockPresigner.On("PresignUpload", mock.Anything, mock.Anything, mock.Anything).
		Return("https://storage/upload", nil)
	mockDocumentRepo.On("Create", mock.AnythingOfType("*entity.Document")).Return(nil)

	svc := createTestDocumentService(mockDocumentRepo, mockResponseRepo, mockPresigner, nil)

	// Ровно 10 MiB принимается
	req := validUploadRequest()
	req.FileSize = 10485760
	_, err := svc.RequestUpload(7, req)
	assert.NoError(t, err)

	// 10 MiB + 1 байт отклоняется до выдачи URL
	req.FileSize = 10485761
	_, err = svc.RequestUpload(7, req)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestDocumentService_RequestUpload_UnsupportedMimeType(t *testing.T) {
	mockDocumentRepo := new(MockDocumentRepository)
	mockResponseRepo := new(MockResponseRepository)
	mockPresigner := new(MockPresigner)

	svc := createTestDocumentService(mockDocumentRepo, mockResponseRepo, mockPresigner, nil)

	req := validUploadRequest()
	req.MimeType = "video/mp4"

	_, err := svc.RequestUpload(7, req)

	assert.ErrorIs(t, err, ErrUnsupportedMimeType)
	mockPresigner.AssertNotCalled(t, "PresignUpload")
	mockDocumentRepo.AssertNotCalled(t, "Create")
}

func TestDocumentService_RequestUpload_ResponseNotFound(t *testing.T) {
	// Строгая политика существования: client_id должен разрешаться
	// в сохраненный ответ вызывающего
	mockDocumentRepo := new(MockDocumentRepository)
	mockResponseRepo := new(MockResponseRepository)
	mockPresigner := new(MockPresigner)

	mockResponseRepo.On("GetByClientID", uint(7), "client-1").Return(nil, apperrors.ErrNotFound)

	svc := createTestDocumentService(mockDocumentRepo, mockResponseRepo, mockPresigner, nil)

	_, err := svc.RequestUpload(7, validUploadRequest())

	assert.ErrorIs(t, err, ErrResponseNotFound)
	mockPresigner.AssertNotCalled(t, "PresignUpload")
}

func TestDocumentService_RequestUpload_OCRRequiredByType(t *testing.T) {
	mockDocumentRepo := new(MockDocumentRepository)
	mockResponseRepo := new(MockResponseRepository)
	mockPresigner := new(MockPresigner)

	existing := &entity.SurveyResponse{ID: 1, ClientID: "client-1", UserID: 7}
	mockResponseRepo.On("GetByClientID", uint(7), "client-1").Return(existing, nil)
	mockPresigner.On("PresignUpload", mock.Anything, mock.Anything, mock.Anything).
		Return("https://storage/upload", nil)
	mockDocumentRepo.On("Create", mock.AnythingOfType("*entity.Document")).Return(nil)

	svc := createTestDocumentService(mockDocumentRepo, mockResponseRepo, mockPresigner, nil)

	testCases := []struct {
		documentType string
		ocrRequired  bool
	}{
		{entity.DocumentTypeIDCard, true},
		{entity.DocumentTypeReceipt, true},
		{entity.DocumentTypeForm, true},
		{entity.DocumentTypeSignature, false},
		{entity.DocumentTypePhoto, false},
	}

	for _, tc := range testCases {
		t.Run(tc.documentType, func(t *testing.T) {
			req := validUploadRequest()
			req.Metadata.DocumentType = tc.documentType

			grant, err := svc.RequestUpload(7, req)

			require.NoError(t, err)
			assert.Equal(t, tc.ocrRequired, grant.OCRRequired)
		})
	}
}

func TestDocumentService_RequestUpload_LowConfidenceWarning(t *testing.T) {
	mockDocumentRepo := new(MockDocumentRepository)
	mockResponseRepo := new(MockResponseRepository)
	mockPresigner := new(MockPresigner)

	existing := &entity.SurveyResponse{ID: 1, ClientID: "client-1", UserID: 7}
	mockResponseRepo.On("GetByClientID", uint(7), "client-1").Return(existing, nil)
	mockPresigner.On("PresignUpload", mock.Anything, mock.Anything, mock.Anything).
		Return("https://storage/upload", nil)
	mockDocumentRepo.On("Create", mock.AnythingOfType("*entity.Document")).Return(nil)

	svc := createTestDocumentService(mockDocumentRepo, mockResponseRepo, mockPresigner, nil)

	testCases := []struct {
		name        string
		confidence  *float64
		wantWarning bool
	}{
		{"ниже порога", floatPtr(0.69), true},
		{"ровно на пороге", floatPtr(0.70), false},
		{"уверенность отсутствует", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := validUploadRequest()
			req.Metadata.OCRConfidence = tc.confidence

			grant, err := svc.RequestUpload(7, req)

			require.NoError(t, err, "низкая уверенность никогда не отклоняет документ")
			assert.Equal(t, tc.wantWarning, grant.LowConfidenceWarning)
		})
	}
}

func TestDocumentService_RequestUpload_NoWarningWithoutOCRRequirement(t *testing.T) {
	// Низкая уверенность на типе без OCR не дает предупреждения
	mockDocumentRepo := new(MockDocumentRepository)
	mockResponseRepo := new(MockResponseRepository)
	mockPresigner := new(MockPresigner)

	existing := &entity.SurveyResponse{ID: 1, ClientID: "client-1", UserID: 7}
	mockResponseRepo.On("GetByClientID", uint(7), "client-1").Return(existing, nil)
	mockPresigner.On("PresignUpload", mock.Anything, mock.Anything, mock.Anything).
		Return("https://storage/upload", nil)
	mockDocumentRepo.On("Create", mock.AnythingOfType("*entity.Document")).Return(nil)

	svc := createTestDocumentService(mockDocumentRepo, mockResponseRepo, mockPresigner, nil)

	req := validUploadRequest()
	req.Metadata.DocumentType = entity.DocumentTypePhoto
	req.Metadata.OCRConfidence = floatPtr(0.1)

	grant, err := svc.RequestUpload(7, req)

	require.NoError(t, err)
	assert.False(t, grant.LowConfidenceWarning)
}

func TestDocumentService_Confirm_Success(t *testing.T) {
	mockDocumentRepo := new(MockDocumentRepository)
	mockResponseRepo := new(MockResponseRepository)

	document := &entity.Document{DocumentID: "doc_abc123def456", UserID: 7, Status: entity.DocumentStatusPending}
	mockDocumentRepo.On("GetByDocumentID", "doc_abc123def456").Return(document, nil)
	mockDocumentRepo.On("MarkUploaded", "doc_abc123def456", "https://storage/final").Return(nil)

	svc := createTestDocumentService(mockDocumentRepo, mockResponseRepo, nil, nil)

	err := svc.Confirm(7, "doc_abc123def456", "https://storage/final")

	require.NoError(t, err)
	mockDocumentRepo.AssertExpectations(t)
}

func TestDocumentService_Confirm_ForeignDocument(t *testing.T) {
	// Чужой документ неотличим от несуществующего
	mockDocumentRepo := new(MockDocumentRepository)
	mockResponseRepo := new(MockResponseRepository)

	document := &entity.Document{DocumentID: "doc_abc123def456", UserID: 99}
	mockDocumentRepo.On("GetByDocumentID", "doc_abc123def456").Return(document, nil)

	svc := createTestDocumentService(mockDocumentRepo, mockResponseRepo, nil, nil)

	err := svc.Confirm(7, "doc_abc123def456", "")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	mockDocumentRepo.AssertNotCalled(t, "MarkUploaded")
}
