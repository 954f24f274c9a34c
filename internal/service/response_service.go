package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/brigada-api/internal/domain/entity"
	"github.com/yourusername/brigada-api/internal/domain/repository"
	apperrors "github.com/yourusername/brigada-api/internal/pkg/errors"
)

// Ограничения на размер батча
const (
	MinBatchSize = 1
	MaxBatchSize = 50
)

// Статусы элемента батча
const (
	BatchItemStatusSuccess   = "success"
	BatchItemStatusDuplicate = "duplicate"
	BatchItemStatusFailed    = "failed"
	BatchItemStatusPartial   = "partial"
)

// Предупреждение для дубликатов; клиенты разбирают текст, не менять
const duplicateWarning = "Response already exists - skipped"

// BatchItemResult - результат обработки одного элемента батча.
// Не персистится, живет только в ответе на запрос.
type BatchItemResult struct {
	ClientID   string   `json:"client_id"`
	Status     string   `json:"status"`
	ResponseID uint     `json:"response_id,omitempty"`
	Errors     []string `json:"errors"`
	Warnings   []string `json:"warnings"`
}

// BatchResult - итог обработки батча. Счетчики - чистые суммы по results:
// successful учитывает success и partial (данные сохранены),
// failed - только failed (ничего не сохранено).
type BatchResult struct {
	Total      int               `json:"total"`
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
	Duplicates int               `json:"duplicates"`
	Results    []BatchItemResult `json:"results"`
}

// ResponseService обрабатывает пакетную синхронизацию ответов с мобильных
// устройств. Каждый элемент батча валидируется и сохраняется независимо;
// единственный межэлементный инвариант - уникальность (user_id, client_id),
// которую обеспечивает ограничение БД.
type ResponseService struct {
	responseRepo repository.ResponseRepository
	surveyRepo   repository.SurveyRepository
	cacheRepo    repository.CacheRepository
	validator    *AnswerValidator
}

// NewResponseService создает новый сервис ответов
func NewResponseService(
	responseRepo repository.ResponseRepository,
	surveyRepo repository.SurveyRepository,
	cacheRepo repository.CacheRepository,
	validator *AnswerValidator,
) *ResponseService {
	return &ResponseService{
		responseRepo: responseRepo,
		surveyRepo:   surveyRepo,
		cacheRepo:    cacheRepo,
		validator:    validator,
	}
}

// SubmitBatch обрабатывает батч из 1..50 ответов пользователя.
// Порядок results совпадает с порядком входных элементов.
// Ошибка возвращается только при нарушении размера батча или недоступности
// хранилища; ошибки валидации отдельных элементов отражаются в их результатах
// и не прерывают обработку остальных.
func (s *ResponseService) SubmitBatch(userID uint, payloads []entity.SurveyResponse) (*BatchResult, error) {
	if len(payloads) < MinBatchSize || len(payloads) > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrBatchSizeInvalid, len(payloads))
	}

	result := &BatchResult{
		Total:   len(payloads),
		Results: make([]BatchItemResult, 0, len(payloads)),
	}

	for i := range payloads {
		item, err := s.processItem(userID, &payloads[i])
		if err != nil {
			// Недоступность хранилища прерывает весь вызов: частичные
			// результаты не выдумываются, клиент безопасно повторит батч
			return nil, fmt.Errorf("batch item %d (client_id=%s): %w", i, payloads[i].ClientID, err)
		}
		result.Results = append(result.Results, *item)

		switch item.Status {
		case BatchItemStatusSuccess, BatchItemStatusPartial:
			result.Successful++
		case BatchItemStatusFailed:
			result.Failed++
		case BatchItemStatusDuplicate:
			result.Duplicates++
		}
	}

	// Отметка последней синхронизации; сбой кеша не влияет на результат
	if err := s.cacheRepo.Set(lastSyncKey(userID), time.Now().UTC().Format(time.RFC3339), 0); err != nil {
		log.Printf("[ResponseService] Не удалось сохранить отметку last_sync для user=%d: %v", userID, err)
	}

	return result, nil
}

// processItem выполняет строгую последовательность для одного элемента:
// индекс дубликатов -> валидация версии -> валидация ответов -> сохранение.
// Ошибка возвращается только при недоступности хранилища.
func (s *ResponseService) processItem(userID uint, payload *entity.SurveyResponse) (*BatchItemResult, error) {
	item := &BatchItemResult{
		ClientID: payload.ClientID,
		Errors:   []string{},
		Warnings: []string{},
	}

	// 1. Индекс дубликатов: быстрый путь до какой-либо записи
	existing, err := s.responseRepo.GetByClientID(userID, payload.ClientID)
	if err == nil {
		item.Status = BatchItemStatusDuplicate
		item.ResponseID = existing.ID
		item.Warnings = append(item.Warnings, duplicateWarning)
		return item, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	// 2. Валидация версии: версия должна существовать и быть опубликованной
	version, err := s.surveyRepo.GetVersionByID(payload.VersionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			item.Status = BatchItemStatusFailed
			item.Errors = append(item.Errors, fmt.Sprintf("%s: %d", ErrVersionNotFound, payload.VersionID))
			return item, nil
		}
		return nil, err
	}
	if !version.IsPublished {
		item.Status = BatchItemStatusFailed
		item.Errors = append(item.Errors, fmt.Sprintf("%s: %d", ErrVersionNotPublished, payload.VersionID))
		return item, nil
	}

	// 3. Валидация ответов. Невалидные ответы не блокируют сохранение:
	// данные сохраняются как есть, а элемент получает статус partial
	verdicts := s.validator.Validate(version, payload.Answers)
	for _, verdict := range verdicts {
		if verdict.Error != "" {
			item.Errors = append(item.Errors, verdict.Error)
		}
		if verdict.Warning != "" {
			item.Warnings = append(item.Warnings, verdict.Warning)
		}
	}

	// 4. Сохранение. Уникальный индекс - финальный арбитр: проигравший
	// гонку наблюдает строку победителя и отчитывается как duplicate
	response := entity.SurveyResponse{
		ClientID:    payload.ClientID,
		UserID:      userID,
		VersionID:   payload.VersionID,
		StartedAt:   payload.StartedAt,
		CompletedAt: payload.CompletedAt,
		Location:    payload.Location,
		DeviceInfo:  payload.DeviceInfo,
		Answers:     payload.Answers,
	}
	if err := s.responseRepo.CreateWithAnswers(&response); err != nil {
		if errors.Is(err, repository.ErrResponseExists) {
			winner, ferr := s.responseRepo.GetByClientID(userID, payload.ClientID)
			if ferr != nil {
				return nil, ferr
			}
			item.Status = BatchItemStatusDuplicate
			item.ResponseID = winner.ID
			item.Errors = item.Errors[:0]
			item.Warnings = append(item.Warnings[:0], duplicateWarning)
			return item, nil
		}
		return nil, err
	}

	// 5. Итоговый статус
	item.ResponseID = response.ID
	if len(item.Errors) > 0 {
		item.Status = BatchItemStatusPartial
	} else {
		item.Status = BatchItemStatusSuccess
	}
	return item, nil
}

// GetUserResponses возвращает сохраненные ответы пользователя с пагинацией
func (s *ResponseService) GetUserResponses(userID uint, limit, offset int) ([]entity.SurveyResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.responseRepo.GetByUser(userID, limit, offset)
}

// GetSurveyResponses возвращает ответы по анкете (админская выгрузка)
func (s *ResponseService) GetSurveyResponses(surveyID uint, limit, offset int) ([]entity.SurveyResponse, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	return s.responseRepo.GetBySurvey(surveyID, limit, offset)
}

// CountSurveyResponses возвращает количество ответов по анкете
func (s *ResponseService) CountSurveyResponses(surveyID uint) (int64, error) {
	return s.responseRepo.CountBySurvey(surveyID)
}

// GetAllSurveyResponses постранично выгружает все ответы анкеты без
// пагинации (используется экспортом)
func (s *ResponseService) GetAllSurveyResponses(surveyID uint) ([]entity.SurveyResponse, error) {
	const pageSize = 1000
	var all []entity.SurveyResponse
	for offset := 0; ; offset += pageSize {
		page, err := s.responseRepo.GetBySurvey(surveyID, pageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}
