package service

import (
	"fmt"
	"regexp"

	"github.com/yourusername/brigada-api/internal/domain/entity"
)

// OCRConfidenceThreshold - порог уверенности OCR. Значения ниже порога
// принимаются, но помечаются предупреждением для очереди ревью.
const OCRConfidenceThreshold = 0.70

// AnswerVerdict - результат проверки одного ответа.
// Непустой Error означает invalid, непустой Warning - принят с предупреждением.
type AnswerVerdict struct {
	QuestionID uint
	Error      string
	Warning    string
}

// AnswerValidator проверяет ответы против определений вопросов версии анкеты
type AnswerValidator struct{}

// NewAnswerValidator создает новый валидатор ответов
func NewAnswerValidator() *AnswerValidator {
	return &AnswerValidator{}
}

// Validate возвращает вердикты для набора ответов против версии анкеты.
// Проверяются: обязательность, соответствие формы значения типу вопроса,
// числовые и длинновые правила, членство в вариантах выбора, порог OCR.
// Ответы на вопросы, не входящие в версию, пропускаются: полная
// ссылочная проверка - обязанность внешнего коллаборатора.
// Вердикты идут в стабильном порядке: сначала пропущенные обязательные
// вопросы в порядке определения версии, затем представленные ответы
// в порядке входного списка.
func (v *AnswerValidator) Validate(version *entity.SurveyVersion, answers []entity.QuestionAnswer) []AnswerVerdict {
	verdicts := make([]AnswerVerdict, 0, len(answers))

	// Последний ответ на вопрос выигрывает
	byQuestion := make(map[uint]*entity.QuestionAnswer, len(answers))
	for i := range answers {
		byQuestion[answers[i].QuestionID] = &answers[i]
	}

	// Обязательные вопросы без ответа
	for i := range version.Questions {
		q := &version.Questions[i]
		if !q.IsRequired {
			continue
		}
		answer, ok := byQuestion[q.ID]
		if !ok || (answer.Value.IsNull() && answer.MediaURL == "") {
			verdicts = append(verdicts, AnswerVerdict{
				QuestionID: q.ID,
				Error:      fmt.Sprintf("Question %d is required", q.ID),
			})
		}
	}

	// Проверка представленных ответов в порядке входного списка:
	// порядок вердиктов (и списков errors/warnings элемента батча)
	// детерминирован. Не-последние дубли вопроса пропускаются.
	for i := range answers {
		answer := &answers[i]
		if byQuestion[answer.QuestionID] != answer {
			continue
		}
		question := version.QuestionByID(answer.QuestionID)
		if question == nil {
			continue
		}
		if answer.Value.IsNull() {
			// Отсутствие значения для необязательного вопроса допустимо;
			// для обязательного ошибка уже добавлена выше
			continue
		}

		verdict := v.checkAnswer(question, answer)
		if verdict.Error != "" || verdict.Warning != "" {
			verdicts = append(verdicts, verdict)
		}
	}

	return verdicts
}

// checkAnswer проверяет одно значение против определения вопроса
func (v *AnswerValidator) checkAnswer(q *entity.Question, answer *entity.QuestionAnswer) AnswerVerdict {
	verdict := AnswerVerdict{QuestionID: q.ID}

	switch {
	case q.IsNumeric():
		num, ok := answer.Value.AsNumber()
		if !ok {
			verdict.Error = fmt.Sprintf("Question %d: expected a numeric value", q.ID)
			return verdict
		}
		if min, has := q.ValidationRules.Float("min"); has && num < min {
			verdict.Error = fmt.Sprintf("Question %d: value %g is below minimum %g", q.ID, num, min)
			return verdict
		}
		if max, has := q.ValidationRules.Float("max"); has && num > max {
			verdict.Error = fmt.Sprintf("Question %d: value %g is above maximum %g", q.ID, num, max)
			return verdict
		}

	case q.Type == entity.QuestionTypeMultipleChoice:
		list, ok := answer.Value.AsStringList()
		if !ok {
			verdict.Error = fmt.Sprintf("Question %d: expected a list of selected options", q.ID)
			return verdict
		}
		for _, item := range list {
			if !optionAllowed(q.Options, item) {
				verdict.Error = fmt.Sprintf("Question %d: option %q is not allowed", q.ID, item)
				return verdict
			}
		}

	case q.IsTextual():
		text, ok := answer.Value.AsString()
		if !ok {
			verdict.Error = fmt.Sprintf("Question %d: expected a text value", q.ID)
			return verdict
		}
		if q.Type == entity.QuestionTypeYesNo && text != "yes" && text != "no" {
			verdict.Error = fmt.Sprintf("Question %d: expected \"yes\" or \"no\"", q.ID)
			return verdict
		}
		if q.Type == entity.QuestionTypeSingleChoice && !optionAllowed(q.Options, text) {
			verdict.Error = fmt.Sprintf("Question %d: option %q is not allowed", q.ID, text)
			return verdict
		}
		if minLen, has := q.ValidationRules.Float("min_length"); has && len([]rune(text)) < int(minLen) {
			verdict.Error = fmt.Sprintf("Question %d: answer is shorter than %d characters", q.ID, int(minLen))
			return verdict
		}
		if maxLen, has := q.ValidationRules.Float("max_length"); has && len([]rune(text)) > int(maxLen) {
			verdict.Error = fmt.Sprintf("Question %d: answer is longer than %d characters", q.ID, int(maxLen))
			return verdict
		}
		if pattern, ok := q.ValidationRules["pattern"].(string); ok && pattern != "" {
			re, err := regexp.Compile(pattern)
			if err == nil && !re.MatchString(text) {
				verdict.Error = fmt.Sprintf("Question %d: answer does not match the required format", q.ID)
				return verdict
			}
		}

	default:
		// Медиа и специальные типы (photo, file, signature, location, ine_ocr):
		// принимается строка с URL или объект с метаданными
		if _, isString := answer.Value.AsString(); !isString {
			if _, isObject := answer.Value.AsObject(); !isObject {
				verdict.Error = fmt.Sprintf("Question %d: expected a media URL or metadata object", q.ID)
				return verdict
			}
		}
	}

	// Низкая уверенность OCR не делает ответ невалидным,
	// но попадает в предупреждения элемента батча
	if conf, has := answer.Value.OCRConfidence(); has && conf < OCRConfidenceThreshold {
		verdict.Warning = fmt.Sprintf("Low OCR confidence (%g) for question %d", conf, q.ID)
	}

	return verdict
}

// optionAllowed проверяет членство значения в вариантах выбора.
// Пустой список вариантов означает отсутствие ограничения.
func optionAllowed(options entity.StringArray, value string) bool {
	if len(options) == 0 {
		return true
	}
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}
