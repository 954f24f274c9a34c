package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/brigada-api/internal/domain/entity"
	"github.com/yourusername/brigada-api/internal/handler/dto"
	apperrors "github.com/yourusername/brigada-api/internal/pkg/errors"
	"github.com/yourusername/brigada-api/internal/service"
)

// MobileHandler обрабатывает запросы мобильного клиента:
// пакетную синхронизацию ответов, загрузку документов и sync-status
type MobileHandler struct {
	responseService *service.ResponseService
	documentService *service.DocumentService
	surveyService   *service.SurveyService
	syncService     *service.SyncService
}

// NewMobileHandler создает новый обработчик мобильных запросов
func NewMobileHandler(
	responseService *service.ResponseService,
	documentService *service.DocumentService,
	surveyService *service.SurveyService,
	syncService *service.SyncService,
) *MobileHandler {
	return &MobileHandler{
		responseService: responseService,
		documentService: documentService,
		surveyService:   surveyService,
		syncService:     syncService,
	}
}

// SubmitBatch обрабатывает пакетную синхронизацию ответов
// POST /api/mobile/responses/batch
func (h *MobileHandler) SubmitBatch(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req dto.BatchSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payloads := make([]entity.SurveyResponse, 0, len(req.Responses))
	for i := range req.Responses {
		payloads = append(payloads, req.Responses[i].ToEntity())
	}

	result, err := h.responseService.SubmitBatch(userID, payloads)
	if err != nil {
		if errors.Is(err, service.ErrBatchSizeInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.handleError(c, err)
		return
	}

	// 201 даже если отдельные элементы батча завершились failed:
	// вызов принят, клиент разбирает per-item результаты
	c.JSON(http.StatusCreated, result)
}

// RequestDocumentUpload выдает pre-signed URL для загрузки документа
// POST /api/mobile/documents/upload
func (h *MobileHandler) RequestDocumentUpload(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req dto.DocumentUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grant, err := h.documentService.RequestUpload(userID, service.UploadRequest{
		ClientID: req.ClientID,
		FileName: req.FileName,
		FileSize: req.FileSize,
		MimeType: req.MimeType,
		Metadata: service.DocumentMetadata{
			DocumentType:  req.Metadata.DocumentType,
			QuestionID:    req.Metadata.QuestionID,
			OCRConfidence: req.Metadata.OCRConfidence,
			OCRText:       req.Metadata.OCRText,
			PageNumber:    req.Metadata.PageNumber,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge), errors.Is(err, service.ErrUnsupportedMimeType):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrResponseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			h.handleError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, grant)
}

// ConfirmDocumentUpload подтверждает завершение загрузки документа
// POST /api/mobile/documents/confirm
func (h *MobileHandler) ConfirmDocumentUpload(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req dto.DocumentConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.documentService.Confirm(userID, req.DocumentID, req.RemoteURL); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document confirmed", "document_id": req.DocumentID})
}

// GetSyncStatus возвращает состояние синхронизации пользователя
// GET /api/mobile/sync-status
func (h *MobileHandler) GetSyncStatus(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	status, err := h.syncService.Status(userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetAssignedSurveys возвращает назначенные анкеты с последними
// опубликованными версиями
// GET /api/mobile/surveys?status=pending|in_progress|completed
func (h *MobileHandler) GetAssignedSurveys(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	surveys, err := h.surveyService.GetAssignedSurveys(userID, c.Query("status"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatusFilter) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"surveys": surveys,
		"total":   len(surveys),
	})
}

// GetLatestSurveyVersion возвращает последнюю опубликованную версию анкеты
// GET /api/mobile/surveys/:id/latest
func (h *MobileHandler) GetLatestSurveyVersion(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	surveyID := c.MustGet("surveyID").(uint) // Получаем из контекста

	version, err := h.surveyService.GetLatestPublishedVersion(userID, surveyID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, version)
}

// GetMyResponses возвращает сохраненные ответы пользователя
// GET /api/mobile/responses/me?skip=0&limit=100
func (h *MobileHandler) GetMyResponses(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 100
	}

	responses, err := h.responseService.GetUserResponses(userID, limit, skip)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"responses": dto.NewListResponseView(responses),
		"total":     len(responses),
		"skip":      skip,
		"limit":     limit,
	})
}

// currentUserID извлекает ID пользователя из контекста Gin
func (h *MobileHandler) currentUserID(c *gin.Context) (uint, bool) {
	userIDRaw, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	userID, ok := userIDRaw.(uint)
	if !ok {
		log.Printf("[MobileHandler] Некорректный user_id в контексте: %v", userIDRaw)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return 0, false
	}
	return userID, true
}

// handleError обрабатывает ошибки сервисов и отправляет соответствующий HTTP ответ
func (h *MobileHandler) handleError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in MobileHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
