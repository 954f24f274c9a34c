package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/brigada-api/internal/domain/entity"
	"github.com/yourusername/brigada-api/internal/domain/repository"
	apperrors "github.com/yourusername/brigada-api/internal/pkg/errors"
)

// ============================================================================
// Хелперы
// ============================================================================

func createTestResponseService(
	responseRepo *MockResponseRepository,
	surveyRepo *MockSurveyRepository,
	cacheRepo *MockCacheRepository,
) *ResponseService {
	return NewResponseService(responseRepo, surveyRepo, cacheRepo, NewAnswerValidator())
}

func publishedTestVersion(id uint) *entity.SurveyVersion {
	return &entity.SurveyVersion{
		ID:          id,
		SurveyID:    1,
		IsPublished: true,
		Questions: []entity.Question{
			{ID: 10, VersionID: id, Type: entity.QuestionTypeText, IsRequired: false},
			{ID: 11, VersionID: id, Type: entity.QuestionTypeNumber, IsRequired: false},
		},
	}
}

func textAnswer(questionID uint, value string) entity.QuestionAnswer {
	raw, _ := json.Marshal(value)
	return entity.QuestionAnswer{QuestionID: questionID, Value: entity.AnswerValue(raw)}
}

func testPayload(clientID string, versionID uint) entity.SurveyResponse {
	return entity.SurveyResponse{
		ClientID:  clientID,
		VersionID: versionID,
		Answers:   []entity.QuestionAnswer{textAnswer(10, "привет")},
	}
}

// ============================================================================
// Тесты для ResponseService.SubmitBatch
// ============================================================================

func TestResponseService_SubmitBatch_Success(t *testing.T) {
	// Arrange
	mockResponseRepo := new(MockResponseRepository)
	mockSurveyRepo := new(MockSurveyRepository)
	mockCacheRepo := new(MockCacheRepository)

	mockResponseRepo.On("GetByClientID", uint(7), "client-1").Return(nil, apperrors.ErrNotFound)
	mockSurveyRepo.On("GetVersionByID", uint(3)).Return(publishedTestVersion(3), nil)
	mockResponseRepo.On("CreateWithAnswers", mock.AnythingOfType("*entity.SurveyResponse")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*entity.SurveyResponse).ID = 42
		}).Return(nil)
	mockCacheRepo.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := createTestResponseService(mockResponseRepo, mockSurveyRepo, mockCacheRepo)

	// Act
	result, err := svc.SubmitBatch(7, []entity.SurveyResponse{testPayload("client-1", 3)})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 0, result.Duplicates)
	require.Len(t, result.Results, 1)
	assert.Equal(t, BatchItemStatusSuccess, result.Results[0].Status)
	assert.Equal(t, uint(42), result.Results[0].ResponseID)
	assert.Empty(t, result.Results[0].Errors)
	assert.Empty(t, result.Results[0].Warnings)
	mockResponseRepo.AssertExpectations(t)
}

func TestResponseService_SubmitBatch_Idempotence(t *testing.T) {
	// Arrange: ответ с таким client_id уже сохранен
	mockResponseRepo := new(MockResponseRepository)
	mockSurveyRepo := new(MockSurveyRepository)
	mockCacheRepo := new(MockCacheRepository)

	existing := &entity.SurveyResponse{ID: 99, ClientID: "client-1", UserID: 7}
	mockResponseRepo.On("GetByClientID", uint(7), "client-1").Return(existing, nil)
	mockCacheRepo.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := createTestResponseService(mockResponseRepo, mockSurveyRepo, mockCacheRepo)

	// Act
	result, err := svc.SubmitBatch(7, []entity.SurveyResponse{testPayload("client-1", 3)})

	// Assert: duplicate с id победителя, никакой записи не создается
	require.NoError(t, err)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 0, result.Successful)
	require.Len(t, result.Results, 1)
	assert.Equal(t, BatchItemStatusDuplicate, result.Results[0].Status)
	assert.Equal(t, uint(99), result.Results[0].ResponseID)
	assert.Equal(t, []string{"Response already exists - skipped"}, result.Results[0].Warnings)
	mockResponseRepo.AssertNotCalled(t, "CreateWithAnswers")
	mockSurveyRepo.AssertNotCalled(t, "GetVersionByID")
}

func TestResponseService_SubmitBatch_BatchIsolation(t *testing.T) {
	// Arrange: элемент 2 ссылается на несуществующую версию,
	// элементы 1 и 3 должны быть сохранены
	mockResponseRepo := new(MockResponseRepository)
	mockSurveyRepo := new(MockSurveyRepository)
	mockCacheRepo := new(MockCacheRepository)

	mockResponseRepo.On("GetByClientID", uint(7), mock.Anything).Return(nil, apperrors.ErrNotFound)
	mockSurveyRepo.On("GetVersionByID", uint(3)).Return(publishedTestVersion(3), nil)
	mockSurveyRepo.On("GetVersionByID", uint(777)).Return(nil, apperrors.ErrNotFound)
	mockResponseRepo.On("CreateWithAnswers", mock.AnythingOfType("*entity.SurveyResponse")).Return(nil)
	mockCacheRepo.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := createTestResponseService(mockResponseRepo, mockSurveyRepo, mockCacheRepo)

	// Act
	result, err := svc.SubmitBatch(7, []entity.SurveyResponse{
		testPayload("client-1", 3),
		testPayload("client-2", 777),
		testPayload("client-3", 3),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 3)
	// Порядок результатов совпадает с порядком входных элементов
	assert.Equal(t, "client-1", result.Results[0].ClientID)
	assert.Equal(t, "client-2", result.Results[1].ClientID)
	assert.Equal(t, "client-3", result.Results[2].ClientID)
	assert.Equal(t, BatchItemStatusFailed, result.Results[1].Status)
	assert.NotEmpty(t, result.Results[1].Errors)
	mockResponseRepo.AssertNumberOfCalls(t, "CreateWithAnswers", 2)
}

func TestResponseService_SubmitBatch_SizeBounds(t *testing.T) {
	mockResponseRepo := new(MockResponseRepository)
	mockSurveyRepo := new(MockSurveyRepository)
	mockCacheRepo := new(MockCacheRepository)
	svc := createTestResponseService(mockResponseRepo, mockSurveyRepo, mockCacheRepo)

	// Пустой батч отклоняется на уровне запроса
	_, err := svc.SubmitBatch(7, nil)
	assert.ErrorIs(t, err, ErrBatchSizeInvalid)

	// 51 элемент отклоняется на уровне запроса
	oversized := make([]entity.SurveyResponse, 51)
	for i := range oversized {
		oversized[i] = testPayload(fmt.Sprintf("client-%d", i), 3)
	}
	_, err = svc.SubmitBatch(7, oversized)
	assert.ErrorIs(t, err, ErrBatchSizeInvalid)
	mockResponseRepo.AssertNotCalled(t, "GetByClientID")
}

func TestResponseService_SubmitBatch_ExactlyFifty(t *testing.T) {
	// Arrange: ровно 50 валидных элементов
	mockResponseRepo := new(MockResponseRepository)
	mockSurveyRepo := new(MockSurveyRepository)
	mockCacheRepo := new(MockCacheRepository)

	mockResponseRepo.On("GetByClientID", uint(7), mock.Anything).Return(nil, apperrors.ErrNotFound)
	mockSurveyRepo.On("GetVersionByID", uint(3)).Return(publishedTestVersion(3), nil)
	mockResponseRepo.On("CreateWithAnswers", mock.AnythingOfType("*entity.SurveyResponse")).Return(nil)
	mockCacheRepo.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := createTestResponseService(mockResponseRepo, mockSurveyRepo, mockCacheRepo)

	payloads := make([]entity.SurveyResponse, 50)
	for i := range payloads {
		payloads[i] = testPayload(fmt.Sprintf("client-%d", i), 3)
	}

	// Act
	result, err := svc.SubmitBatch(7, payloads)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 50, result.Total)
	assert.Equal(t, 50, result.Successful)
}

func TestResponseService_SubmitBatch_UnpublishedVersion(t *testing.T) {
	// Arrange
	mockResponseRepo := new(MockResponseRepository)
	mockSurveyRepo := new(MockSurveyRepository)
	mockCacheRepo := new(MockCacheRepository)

	draft := &entity.SurveyVersion{ID: 5, SurveyID: 1, IsPublished: false}
	mockResponseRepo.On("GetByClientID", uint(7), "client-1").Return(nil, apperrors.ErrNotFound)
	mockSurveyRepo.On("GetVersionByID", uint(5)).Return(draft, nil)
	mockCacheRepo.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := createTestResponseService(mockResponseRepo, mockSurveyRepo, mockCacheRepo)

	// Act
	result, err := svc.SubmitBatch(7, []entity.SurveyResponse{testPayload("client-1", 5)})

	// Assert: failed с ошибкой про неопубликованную версию, запись не создана
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 1)
	assert.Equal(t, BatchItemStatusFailed, result.Results[0].Status)
	require.NotEmpty(t, result.Results[0].Errors)
	assert.Contains(t, result.Results[0].Errors[0], "not published")
	mockResponseRepo.AssertNotCalled(t, "CreateWithAnswers")
}

func TestResponseService_SubmitBatch_RaceLoserReportsDuplicate(t *testing.T) {
	// Arrange: быстрая проверка не нашла дубликат, но вставка проиграла
	// гонку за уникальный индекс
	mockResponseRepo := new(MockResponseRepository)
	mockSurveyRepo := new(MockSurveyRepository)
	mockCacheRepo := new(MockCacheRepository)

	winner := &entity.SurveyResponse{ID: 100, ClientID: "client-1", UserID: 7}
	mockResponseRepo.On("GetByClientID", uint(7), "client-1").Return(nil, apperrors.ErrNotFound).Once()
	mockSurveyRepo.On("GetVersionByID", uint(3)).Return(publishedTestVersion(3), nil)
	mockResponseRepo.On("CreateWithAnswers", mock.AnythingOfType("*entity.SurveyResponse")).
		Return(repository.ErrResponseExists)
	mockResponseRepo.On("GetByClientID", uint(7), "client-1").Return(winner, nil).Once()
	mockCacheRepo.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := createTestResponseService(mockResponseRepo, mockSurveyRepo, mockCacheRepo)

	// Act
	result, err := svc.SubmitBatch(7, []entity.SurveyResponse{testPayload("client-1", 3)})

	// Assert: проигравший отчитывается как duplicate с id победителя
	require.NoError(t, err)
	assert.Equal(t, 1, result.Duplicates)
	require.Len(t, result.Results, 1)
	assert.Equal(t, BatchItemStatusDuplicate, result.Results[0].Status)
	assert.Equal(t, uint(100), result.Results[0].ResponseID)
	assert.Empty(t, result.Results[0].Errors)
	assert.Equal(t, []string{"Response already exists - skipped"}, result.Results[0].Warnings)
}

func TestResponseService_SubmitBatch_PartialOnInvalidAnswers(t *testing.T) {
	// Arrange: обязательный вопрос без ответа. Данные сохраняются как есть,
	// элемент получает статус partial и учитывается в successful.
	mockResponseRepo := new(MockResponseRepository)
	mockSurveyRepo := new(MockSurveyRepository)
	mockCacheRepo := new(MockCacheRepository)

	version := publishedTestVersion(3)
	version.Questions[0].IsRequired = true

	mockResponseRepo.On("GetByClientID", uint(7), "client-1").Return(nil, apperrors.ErrNotFound)
	mockSurveyRepo.On("GetVersionByID", uint(3)).Return(version, nil)
	mockResponseRepo.On("CreateWithAnswers", mock.AnythingOfType("*entity.SurveyResponse")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*entity.SurveyResponse).ID = 55
		}).Return(nil)
	mockCacheRepo.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := createTestResponseService(mockResponseRepo, mockSurveyRepo, mockCacheRepo)

	payload := entity.SurveyResponse{ClientID: "client-1", VersionID: 3}

	// Act
	result, err := svc.SubmitBatch(7, []entity.SurveyResponse{payload})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.Successful, "partial учитывается в successful")
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.Results, 1)
	assert.Equal(t, BatchItemStatusPartial, result.Results[0].Status)
	assert.Equal(t, uint(55), result.Results[0].ResponseID)
	assert.NotEmpty(t, result.Results[0].Errors)
}

func TestResponseService_SubmitBatch_StorageUnavailableAbortsCall(t *testing.T) {
	// Arrange: недоступность хранилища прерывает весь вызов,
	// частичные результаты не выдумываются
	mockResponseRepo := new(MockResponseRepository)
	mockSurveyRepo := new(MockSurveyRepository)
	mockCacheRepo := new(MockCacheRepository)

	mockResponseRepo.On("GetByClientID", uint(7), "client-1").
		Return(nil, errors.New("connection refused"))

	svc := createTestResponseService(mockResponseRepo, mockSurveyRepo, mockCacheRepo)

	// Act
	result, err := svc.SubmitBatch(7, []entity.SurveyResponse{testPayload("client-1", 3)})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
	mockCacheRepo.AssertNotCalled(t, "Set")
}

func TestResponseService_SubmitBatch_CacheFailureDoesNotFailCall(t *testing.T) {
	// Arrange: сбой отметки last_sync логируется, но не влияет на результат
	mockResponseRepo := new(MockResponseRepository)
	mockSurveyRepo := new(MockSurveyRepository)
	mockCacheRepo := new(MockCacheRepository)

	mockResponseRepo.On("GetByClientID", uint(7), "client-1").Return(nil, apperrors.ErrNotFound)
	mockSurveyRepo.On("GetVersionByID", uint(3)).Return(publishedTestVersion(3), nil)
	mockResponseRepo.On("CreateWithAnswers", mock.AnythingOfType("*entity.SurveyResponse")).Return(nil)
	mockCacheRepo.On("Set", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("redis down"))

	svc := createTestResponseService(mockResponseRepo, mockSurveyRepo, mockCacheRepo)

	// Act
	result, err := svc.SubmitBatch(7, []entity.SurveyResponse{testPayload("client-1", 3)})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.Successful)
}
