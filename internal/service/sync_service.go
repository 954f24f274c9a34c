package service

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/yourusername/brigada-api/internal/domain/repository"
	apperrors "github.com/yourusername/brigada-api/internal/pkg/errors"
)

// SyncStatus - агрегированное состояние синхронизации пользователя.
// pending_responses отслеживается на клиенте и здесь всегда 0.
type SyncStatus struct {
	UserID           uint       `json:"user_id"`
	PendingResponses int64      `json:"pending_responses"`
	SyncedResponses  int64      `json:"synced_responses"`
	PendingDocuments int64      `json:"pending_documents"`
	LastSync         *time.Time `json:"last_sync"`
	AssignedSurveys  int64      `json:"assigned_surveys"`
	AvailableUpdates []uint     `json:"available_updates"`
}

// SyncService вычисляет состояние синхронизации для мобильного клиента.
// Операция строго read-only: ни индекс дубликатов, ни ответы не изменяются.
type SyncService struct {
	responseRepo   repository.ResponseRepository
	documentRepo   repository.DocumentRepository
	assignmentRepo repository.AssignmentRepository
	surveyRepo     repository.SurveyRepository
	cacheRepo      repository.CacheRepository
}

// NewSyncService создает новый сервис синхронизации
func NewSyncService(
	responseRepo repository.ResponseRepository,
	documentRepo repository.DocumentRepository,
	assignmentRepo repository.AssignmentRepository,
	surveyRepo repository.SurveyRepository,
	cacheRepo repository.CacheRepository,
) *SyncService {
	return &SyncService{
		responseRepo:   responseRepo,
		documentRepo:   documentRepo,
		assignmentRepo: assignmentRepo,
		surveyRepo:     surveyRepo,
		cacheRepo:      cacheRepo,
	}
}

// Status возвращает счетчики синхронизации и список анкет с доступными
// обновлениями версий
func (s *SyncService) Status(userID uint) (*SyncStatus, error) {
	synced, err := s.responseRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}

	pendingDocs, err := s.documentRepo.CountPendingByUser(userID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.assignmentRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}

	status := &SyncStatus{
		UserID:           userID,
		SyncedResponses:  synced,
		PendingDocuments: pendingDocs,
		AssignedSurveys:  int64(len(assignments)),
		AvailableUpdates: []uint{},
	}

	// Отметка последней синхронизации; недоступность кеша деградирует
	// до "отметка отсутствует", а не до ошибки
	if raw, err := s.cacheRepo.Get(lastSyncKey(userID)); err == nil {
		if ts, perr := time.Parse(time.RFC3339, raw); perr == nil {
			status.LastSync = &ts
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[SyncService] Не удалось прочитать отметку last_sync для user=%d: %v", userID, err)
	}

	// Анкета попадает в available_updates, если опубликована версия
	// новее последней скачанной клиентом. Без отметки о скачивании
	// анкета пропускается.
	for _, assignment := range assignments {
		latest, err := s.surveyRepo.GetLatestPublishedVersion(assignment.SurveyID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}

		raw, err := s.cacheRepo.Get(lastDownloadKey(userID, assignment.SurveyID))
		if err != nil {
			continue
		}
		downloaded, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			continue
		}
		if latest.ID > uint(downloaded) {
			status.AvailableUpdates = append(status.AvailableUpdates, assignment.SurveyID)
		}
	}

	return status, nil
}

// lastSyncKey - ключ отметки последней успешной синхронизации пользователя
func lastSyncKey(userID uint) string {
	return fmt.Sprintf("sync:last:%d", userID)
}

// lastDownloadKey - ключ последней версии анкеты, скачанной пользователем
func lastDownloadKey(userID, surveyID uint) string {
	return fmt.Sprintf("sync:downloaded:%d:%d", userID, surveyID)
}
