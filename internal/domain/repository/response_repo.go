package repository

import (
	"errors"

	"github.com/yourusername/brigada-api/internal/domain/entity"
)

var (
	// ErrResponseExists означает, что ответ с таким (user_id, client_id) уже сохранен.
	// Возвращается при нарушении уникального индекса uq_responses_user_client -
	// именно ограничение БД, а не проверка в приложении, является источником истины.
	ErrResponseExists = errors.New("response with this client_id already exists")
)

// ResponseRepository определяет методы для работы с ответами на анкеты
type ResponseRepository interface {
	// CreateWithAnswers сохраняет ответ вместе со всеми ответами на вопросы
	// в одной транзакции. При гонке за один client_id проигравший получает
	// ErrResponseExists.
	CreateWithAnswers(response *entity.SurveyResponse) error

	// GetByClientID ищет ответ по паре (user_id, client_id) - индекс дубликатов
	GetByClientID(userID uint, clientID string) (*entity.SurveyResponse, error)

	GetByID(id uint) (*entity.SurveyResponse, error)
	GetByUser(userID uint, limit, offset int) ([]entity.SurveyResponse, error)
	GetBySurvey(surveyID uint, limit, offset int) ([]entity.SurveyResponse, error)
	CountByUser(userID uint) (int64, error)
	CountBySurvey(surveyID uint) (int64, error)
}
