package service

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/yourusername/brigada-api/internal/domain/entity"
	"github.com/yourusername/brigada-api/internal/domain/repository"
	apperrors "github.com/yourusername/brigada-api/internal/pkg/errors"
)

// AssignedSurvey - назначенная анкета с последней опубликованной версией
// для скачивания мобильным клиентом
type AssignedSurvey struct {
	AssignmentID      uint                  `json:"assignment_id"`
	SurveyID          uint                  `json:"survey_id"`
	SurveyTitle       string                `json:"survey_title"`
	SurveyDescription string                `json:"survey_description,omitempty"`
	AssignmentStatus  string                `json:"assignment_status"`
	AssignedLocation  string                `json:"assigned_location,omitempty"`
	LatestVersion     *entity.SurveyVersion `json:"latest_version"`
	AssignedAt        time.Time             `json:"assigned_at"`
}

// SurveyService отдает мобильному клиенту структуры анкет.
// Структуры read-only: авторинг и публикация - внешняя обязанность.
type SurveyService struct {
	surveyRepo     repository.SurveyRepository
	assignmentRepo repository.AssignmentRepository
	cacheRepo      repository.CacheRepository
}

// NewSurveyService создает новый сервис анкет
func NewSurveyService(
	surveyRepo repository.SurveyRepository,
	assignmentRepo repository.AssignmentRepository,
	cacheRepo repository.CacheRepository,
) *SurveyService {
	return &SurveyService{
		surveyRepo:     surveyRepo,
		assignmentRepo: assignmentRepo,
		cacheRepo:      cacheRepo,
	}
}

// GetAssignedSurveys возвращает назначения пользователя с последними
// опубликованными версиями. Анкеты без опубликованной версии пропускаются.
// Скачанные версии отмечаются в кеше для вычисления available_updates.
func (s *SurveyService) GetAssignedSurveys(userID uint, statusFilter string) ([]AssignedSurvey, error) {
	if statusFilter != "" {
		switch entity.AssignmentStatus(statusFilter) {
		case entity.AssignmentStatusPending, entity.AssignmentStatusInProgress, entity.AssignmentStatusCompleted:
		default:
			return nil, fmt.Errorf("%w: %s", ErrInvalidStatusFilter, statusFilter)
		}
	}

	assignments, err := s.assignmentRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}

	result := make([]AssignedSurvey, 0, len(assignments))
	for _, assignment := range assignments {
		if statusFilter != "" && string(assignment.Status) != statusFilter {
			continue
		}

		version, err := s.surveyRepo.GetLatestPublishedVersion(assignment.SurveyID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}

		s.recordDownload(userID, assignment.SurveyID, version.ID)

		result = append(result, AssignedSurvey{
			AssignmentID:      assignment.ID,
			SurveyID:          assignment.SurveyID,
			SurveyTitle:       assignment.Survey.Title,
			SurveyDescription: assignment.Survey.Description,
			AssignmentStatus:  string(assignment.Status),
			AssignedLocation:  assignment.Location,
			LatestVersion:     version,
			AssignedAt:        assignment.CreatedAt,
		})
	}

	return result, nil
}

// GetLatestPublishedVersion возвращает последнюю опубликованную версию анкеты
func (s *SurveyService) GetLatestPublishedVersion(userID, surveyID uint) (*entity.SurveyVersion, error) {
	version, err := s.surveyRepo.GetLatestPublishedVersion(surveyID)
	if err != nil {
		return nil, err
	}
	s.recordDownload(userID, surveyID, version.ID)
	return version, nil
}

// GetSurvey возвращает анкету по идентификатору
func (s *SurveyService) GetSurvey(surveyID uint) (*entity.Survey, error) {
	return s.surveyRepo.GetSurveyByID(surveyID)
}

// recordDownload отмечает версию как скачанную клиентом;
// сбой кеша логируется и не прерывает выдачу анкеты
func (s *SurveyService) recordDownload(userID, surveyID, versionID uint) {
	key := lastDownloadKey(userID, surveyID)
	if err := s.cacheRepo.Set(key, strconv.FormatUint(uint64(versionID), 10), 0); err != nil {
		log.Printf("[SurveyService] Не удалось отметить скачанную версию %d анкеты %d для user=%d: %v",
			versionID, surveyID, userID, err)
	}
}
