package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/brigada-api/internal/domain/entity"
)

// ============================================================================
// Общие моки репозиториев для тестов сервисов
// ============================================================================

// MockResponseRepository реализует repository.ResponseRepository
type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) CreateWithAnswers(response *entity.SurveyResponse) error {
	args := m.Called(response)
	return args.Error(0)
}

func (m *MockResponseRepository) GetByClientID(userID uint, clientID string) (*entity.SurveyResponse, error) {
	args := m.Called(userID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SurveyResponse), args.Error(1)
}

func (m *MockResponseRepository) GetByID(id uint) (*entity.SurveyResponse, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SurveyResponse), args.Error(1)
}

func (m *MockResponseRepository) GetByUser(userID uint, limit, offset int) ([]entity.SurveyResponse, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.SurveyResponse), args.Error(1)
}

func (m *MockResponseRepository) GetBySurvey(surveyID uint, limit, offset int) ([]entity.SurveyResponse, error) {
	args := m.Called(surveyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.SurveyResponse), args.Error(1)
}

func (m *MockResponseRepository) CountByUser(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResponseRepository) CountBySurvey(surveyID uint) (int64, error) {
	args := m.Called(surveyID)
	return args.Get(0).(int64), args.Error(1)
}

// MockSurveyRepository реализует repository.SurveyRepository
type MockSurveyRepository struct {
	mock.Mock
}

func (m *MockSurveyRepository) GetVersionByID(versionID uint) (*entity.SurveyVersion, error) {
	args := m.Called(versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SurveyVersion), args.Error(1)
}

func (m *MockSurveyRepository) GetLatestPublishedVersion(surveyID uint) (*entity.SurveyVersion, error) {
	args := m.Called(surveyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SurveyVersion), args.Error(1)
}

func (m *MockSurveyRepository) GetSurveyByID(surveyID uint) (*entity.Survey, error) {
	args := m.Called(surveyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Survey), args.Error(1)
}

// MockDocumentRepository реализует repository.DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(document *entity.Document) error {
	args := m.Called(document)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByDocumentID(documentID string) (*entity.Document, error) {
	args := m.Called(documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Document), args.Error(1)
}

func (m *MockDocumentRepository) MarkUploaded(documentID string, remoteURL string) error {
	args := m.Called(documentID, remoteURL)
	return args.Error(0)
}

func (m *MockDocumentRepository) CountPendingByUser(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentRepository) GetByResponseClientID(userID uint, clientID string) ([]entity.Document, error) {
	args := m.Called(userID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Document), args.Error(1)
}

// MockAssignmentRepository реализует repository.AssignmentRepository
type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) GetByUser(userID uint) ([]entity.Assignment, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) CountByUser(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCacheRepository реализует repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

// MockPresigner реализует storage.Presigner
type MockPresigner struct {
	mock.Mock
}

func (m *MockPresigner) PresignUpload(key string, contentType string, expiresAt time.Time) (string, error) {
	args := m.Called(key, contentType, expiresAt)
	return args.String(0), args.Error(1)
}

// MockEmailService реализует EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendLowConfidenceAlert(ctx context.Context, document *entity.Document) error {
	args := m.Called(ctx, document)
	return args.Error(0)
}
