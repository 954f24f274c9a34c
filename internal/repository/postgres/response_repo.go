package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/yourusername/brigada-api/internal/domain/entity"
	"github.com/yourusername/brigada-api/internal/domain/repository"
	apperrors "github.com/yourusername/brigada-api/internal/pkg/errors"
)

// ResponseRepo реализует repository.ResponseRepository
type ResponseRepo struct {
	db *gorm.DB
}

// NewResponseRepo создает новый репозиторий ответов
func NewResponseRepo(db *gorm.DB) *ResponseRepo {
	return &ResponseRepo{db: db}
}

// CreateWithAnswers сохраняет ответ и все ответы на вопросы в одной транзакции.
// Стратегия "insert, затем разбор конфликта": уникальный индекс
// uq_responses_user_client (user_id, client_id) - единственный арбитр
// дубликатов, окно гонки между проверкой и вставкой отсутствует.
// - 23505 (unique violation) -> repository.ErrResponseExists
// - Другая DB ошибка -> возвращается как есть
func (r *ResponseRepo) CreateWithAnswers(response *entity.SurveyResponse) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(response).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: client_id=%s", repository.ErrResponseExists, response.ClientID)
		}
		return err
	}
	return nil
}

// GetByClientID возвращает ответ по паре (user_id, client_id) с ответами на вопросы
func (r *ResponseRepo) GetByClientID(userID uint, clientID string) (*entity.SurveyResponse, error) {
	var response entity.SurveyResponse
	err := r.db.Preload("Answers").
		Where("user_id = ? AND client_id = ?", userID, clientID).
		First(&response).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &response, nil
}

// GetByID возвращает ответ по ID с ответами на вопросы
func (r *ResponseRepo) GetByID(id uint) (*entity.SurveyResponse, error) {
	var response entity.SurveyResponse
	err := r.db.Preload("Answers").First(&response, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &response, nil
}

// GetByUser возвращает ответы пользователя с пагинацией
func (r *ResponseRepo) GetByUser(userID uint, limit, offset int) ([]entity.SurveyResponse, error) {
	var responses []entity.SurveyResponse
	err := r.db.Preload("Answers").
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// GetBySurvey возвращает ответы по анкете (все версии) с пагинацией
func (r *ResponseRepo) GetBySurvey(surveyID uint, limit, offset int) ([]entity.SurveyResponse, error) {
	var responses []entity.SurveyResponse
	err := r.db.Preload("Answers").
		Joins("JOIN survey_versions ON survey_versions.id = survey_responses.version_id").
		Where("survey_versions.survey_id = ?", surveyID).
		Order("survey_responses.id").
		Limit(limit).Offset(offset).
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// CountByUser возвращает количество сохраненных ответов пользователя
func (r *ResponseRepo) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.SurveyResponse{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// CountBySurvey возвращает количество ответов по анкете
func (r *ResponseRepo) CountBySurvey(surveyID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.SurveyResponse{}).
		Joins("JOIN survey_versions ON survey_versions.id = survey_responses.version_id").
		Where("survey_versions.survey_id = ?", surveyID).
		Count(&count).Error
	return count, err
}

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}
