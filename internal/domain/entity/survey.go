package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// QuestionType определяет тип вопроса анкеты
type QuestionType string

// Поддерживаемые типы вопросов
const (
	// Текстовые
	QuestionTypeText     QuestionType = "text"
	QuestionTypeTextarea QuestionType = "textarea"
	QuestionTypeEmail    QuestionType = "email"
	QuestionTypePhone    QuestionType = "phone"
	// Числовые
	QuestionTypeNumber QuestionType = "number"
	QuestionTypeSlider QuestionType = "slider"
	QuestionTypeScale  QuestionType = "scale"
	QuestionTypeRating QuestionType = "rating"
	// Выбор вариантов
	QuestionTypeSingleChoice   QuestionType = "single_choice"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeYesNo          QuestionType = "yes_no"
	// Дата и время
	QuestionTypeDate     QuestionType = "date"
	QuestionTypeTime     QuestionType = "time"
	QuestionTypeDatetime QuestionType = "datetime"
	// Медиа и специальные
	QuestionTypePhoto     QuestionType = "photo"
	QuestionTypeFile      QuestionType = "file"
	QuestionTypeSignature QuestionType = "signature"
	QuestionTypeLocation  QuestionType = "location"
	QuestionTypeIneOCR    QuestionType = "ine_ocr"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// JSONMap - пользовательский тип для произвольных JSONB объектов
// (validation_rules вопроса, device_info ответа)
type JSONMap map[string]interface{}

// Scan реализует интерфейс sql.Scanner для JSONMap
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*m = nil
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Value реализует интерфейс driver.Valuer для JSONMap
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Float извлекает числовое значение правила валидации по ключу
func (m JSONMap) Float(key string) (float64, bool) {
	raw, ok := m[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Survey представляет шаблон анкеты. После публикации структура
// неизменяема (версионирование через SurveyVersion).
type Survey struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null;index" json:"title"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedBy   uint       `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `gorm:"index" json:"-"`
}

// TableName определяет имя таблицы для GORM
func (Survey) TableName() string {
	return "surveys"
}

// SurveyVersion представляет неизменяемую версию анкеты.
// Ответы принимаются только против опубликованных версий.
type SurveyVersion struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	SurveyID      uint       `gorm:"not null;index" json:"survey_id"`
	VersionNumber int        `gorm:"not null" json:"version_number"`
	IsPublished   bool       `gorm:"not null;default:false" json:"is_published"`
	ChangeSummary string     `gorm:"type:text" json:"change_summary,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	Questions     []Question `gorm:"foreignKey:VersionID" json:"questions"`
}

// TableName определяет имя таблицы для GORM
func (SurveyVersion) TableName() string {
	return "survey_versions"
}

// QuestionByID ищет вопрос версии по его ID
func (v *SurveyVersion) QuestionByID(questionID uint) *Question {
	for i := range v.Questions {
		if v.Questions[i].ID == questionID {
			return &v.Questions[i]
		}
	}
	return nil
}

// Question представляет вопрос конкретной версии анкеты
type Question struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	VersionID       uint         `gorm:"not null;index" json:"version_id"`
	Text            string       `gorm:"type:text;not null" json:"question_text"`
	Type            QuestionType `gorm:"size:32;not null" json:"question_type"`
	Order           int          `gorm:"column:display_order;not null" json:"order"`
	IsRequired      bool         `gorm:"not null;default:false" json:"is_required"`
	ValidationRules JSONMap      `gorm:"type:jsonb" json:"validation_rules,omitempty"`
	Options         StringArray  `gorm:"type:jsonb" json:"options,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsNumeric сообщает, ожидает ли вопрос числовое значение
func (q *Question) IsNumeric() bool {
	switch q.Type {
	case QuestionTypeNumber, QuestionTypeSlider, QuestionTypeScale, QuestionTypeRating:
		return true
	}
	return false
}

// IsTextual сообщает, ожидает ли вопрос строковое значение
func (q *Question) IsTextual() bool {
	switch q.Type {
	case QuestionTypeText, QuestionTypeTextarea, QuestionTypeEmail, QuestionTypePhone,
		QuestionTypeDate, QuestionTypeTime, QuestionTypeDatetime,
		QuestionTypeSingleChoice, QuestionTypeYesNo:
		return true
	}
	return false
}
