package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/brigada-api/internal/domain/entity"
	apperrors "github.com/yourusername/brigada-api/internal/pkg/errors"
	"github.com/yourusername/brigada-api/internal/service"
)

// AdminHandler обрабатывает админские запросы чтения собранных ответов
type AdminHandler struct {
	responseService *service.ResponseService
	surveyService   *service.SurveyService
}

// NewAdminHandler создает новый админский обработчик
func NewAdminHandler(
	responseService *service.ResponseService,
	surveyService *service.SurveyService,
) *AdminHandler {
	return &AdminHandler{
		responseService: responseService,
		surveyService:   surveyService,
	}
}

// GetSurveyResponses возвращает ответы по анкете с пагинацией
// GET /api/admin/responses/survey/:id?skip=0&limit=100
func (h *AdminHandler) GetSurveyResponses(c *gin.Context) {
	surveyID := c.MustGet("surveyID").(uint) // Получаем из контекста

	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 || limit > 1000 {
		limit = 100
	}

	responses, err := h.responseService.GetSurveyResponses(surveyID, limit, skip)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	total, err := h.responseService.CountSurveyResponses(surveyID)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"responses": responses,
		"total":     total,
		"skip":      skip,
		"limit":     limit,
	})
}

// GetSurveySummary возвращает сводку по собранным ответам анкеты
// GET /api/admin/responses/survey/:id/summary
func (h *AdminHandler) GetSurveySummary(c *gin.Context) {
	surveyID := c.MustGet("surveyID").(uint)

	survey, err := h.surveyService.GetSurvey(surveyID)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	total, err := h.responseService.CountSurveyResponses(surveyID)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"survey_id":       survey.ID,
		"survey_title":    survey.Title,
		"total_responses": total,
	})
}

// ExportSurveyResponses экспортирует ответы анкеты в CSV или Excel формате,
// одна строка на ответ на вопрос
// GET /api/admin/responses/survey/:id/export?format=csv|xlsx
func (h *AdminHandler) ExportSurveyResponses(c *gin.Context) {
	surveyID := c.MustGet("surveyID").(uint)
	format := c.DefaultQuery("format", "csv")

	// Получаем ВСЕ ответы без пагинации для экспорта
	responses, err := h.responseService.GetAllSurveyResponses(surveyID)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	filename := fmt.Sprintf("survey_%d_responses_%s", surveyID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, responses, filename)
	default:
		h.exportCSV(c, responses, filename)
	}
}

var exportHeaders = []string{
	"ID ответа", "Client ID", "Пользователь", "Версия", "Завершен",
	"ID вопроса", "Значение", "Медиа", "Отвечено",
}

// exportRow формирует одну строку экспорта (один ответ на один вопрос)
func exportRow(r *entity.SurveyResponse, a *entity.QuestionAnswer) []string {
	completed := ""
	if r.CompletedAt != nil {
		completed = r.CompletedAt.Format(time.RFC3339)
	}
	answered := ""
	if a.AnsweredAt != nil {
		answered = a.AnsweredAt.Format(time.RFC3339)
	}
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		sanitizeForExcel(r.ClientID),
		strconv.FormatUint(uint64(r.UserID), 10),
		strconv.FormatUint(uint64(r.VersionID), 10),
		completed,
		strconv.FormatUint(uint64(a.QuestionID), 10),
		sanitizeForExcel(answerCell(a.Value)),
		sanitizeForExcel(a.MediaURL),
		answered,
	}
}

// exportCSV экспортирует ответы в CSV с правильным экранированием спецсимволов
func (h *AdminHandler) exportCSV(c *gin.Context, responses []entity.SurveyResponse, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	// Используем encoding/csv для правильного экранирования запятых/кавычек
	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)

	for i := range responses {
		r := &responses[i]
		for j := range r.Answers {
			writer.Write(exportRow(r, &r.Answers[j]))
		}
	}
}

// exportXLSX экспортирует ответы в Excel с использованием StreamWriter
func (h *AdminHandler) exportXLSX(c *gin.Context, responses []entity.SurveyResponse, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Ответы"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[AdminHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, head := range exportHeaders {
		headers[i] = head
	}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[AdminHandler] Ошибка записи заголовков: %v", err)
	}

	rowNum := 2
	for i := range responses {
		r := &responses[i]
		for j := range r.Answers {
			cells := exportRow(r, &r.Answers[j])
			row := make([]interface{}, len(cells))
			for k, cell := range cells {
				row[k] = cell
			}
			if err := sw.SetRow(fmt.Sprintf("A%d", rowNum), row); err != nil {
				log.Printf("[AdminHandler] Ошибка записи строки %d: %v", rowNum, err)
			}
			rowNum++
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[AdminHandler] Ошибка при Flush: %v", err)
	}

	// Записываем в response
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[AdminHandler] Ошибка записи Excel в response: %v", err)
	}
}

// answerCell приводит полиморфное значение ответа к строке для экспорта
func answerCell(v entity.AnswerValue) string {
	if v.IsNull() {
		return ""
	}
	if s, ok := v.AsString(); ok {
		return s
	}
	// Числа, списки и объекты выгружаются как компактный JSON
	return string(v)
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// handleAdminError обрабатывает ошибки сервисов и отправляет соответствующий HTTP ответ
func (h *AdminHandler) handleAdminError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in AdminHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
