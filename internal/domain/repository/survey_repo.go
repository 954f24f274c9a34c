package repository

import (
	"github.com/yourusername/brigada-api/internal/domain/entity"
)

// SurveyRepository определяет методы чтения анкет и их версий.
// Авторинг и публикация версий - обязанность админской части;
// для этого сервиса версии анкет строго read-only.
type SurveyRepository interface {
	GetVersionByID(versionID uint) (*entity.SurveyVersion, error)
	GetLatestPublishedVersion(surveyID uint) (*entity.SurveyVersion, error)
	GetSurveyByID(surveyID uint) (*entity.Survey, error)
}
