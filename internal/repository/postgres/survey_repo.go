package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/brigada-api/internal/domain/entity"
	apperrors "github.com/yourusername/brigada-api/internal/pkg/errors"
)

// SurveyRepo реализует repository.SurveyRepository (только чтение)
type SurveyRepo struct {
	db *gorm.DB
}

// NewSurveyRepo создает новый репозиторий анкет
func NewSurveyRepo(db *gorm.DB) *SurveyRepo {
	return &SurveyRepo{db: db}
}

// GetVersionByID возвращает версию анкеты с вопросами
func (r *SurveyRepo) GetVersionByID(versionID uint) (*entity.SurveyVersion, error) {
	var version entity.SurveyVersion
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.display_order")
	}).First(&version, versionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &version, nil
}

// GetLatestPublishedVersion возвращает последнюю опубликованную версию анкеты
func (r *SurveyRepo) GetLatestPublishedVersion(surveyID uint) (*entity.SurveyVersion, error) {
	var version entity.SurveyVersion
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.display_order")
	}).
		Where("survey_id = ? AND is_published = ?", surveyID, true).
		Order("version_number DESC").
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &version, nil
}

// GetSurveyByID возвращает анкету по ID
func (r *SurveyRepo) GetSurveyByID(surveyID uint) (*entity.Survey, error) {
	var survey entity.Survey
	err := r.db.First(&survey, surveyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &survey, nil
}
