package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// AnswerValue - полиморфное значение ответа (JSONB).
// Форма значения диктуется типом вопроса: строка, число, список строк
// или объект (например, результат OCR с полем ocr_confidence).
type AnswerValue []byte

// Scan реализует интерфейс sql.Scanner для AnswerValue
func (v *AnswerValue) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	*v = append((*v)[0:0], b...)
	return nil
}

// Value реализует интерфейс driver.Valuer для AnswerValue
func (v AnswerValue) Value() (driver.Value, error) {
	if v.IsNull() {
		return nil, nil
	}
	return []byte(v), nil
}

// MarshalJSON возвращает хранимое значение как есть
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.IsNull() {
		return []byte("null"), nil
	}
	return v, nil
}

// UnmarshalJSON сохраняет переданный JSON без интерпретации
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	*v = append((*v)[0:0], data...)
	return nil
}

// IsNull сообщает, отсутствует ли значение
func (v AnswerValue) IsNull() bool {
	return len(v) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// AsString возвращает значение как строку, если оно является JSON строкой
func (v AnswerValue) AsString() (string, bool) {
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

// AsNumber возвращает значение как число, если оно является JSON числом
func (v AnswerValue) AsNumber() (float64, bool) {
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// AsStringList возвращает значение как список строк
func (v AnswerValue) AsStringList() ([]string, bool) {
	var list []string
	if err := json.Unmarshal(v, &list); err != nil {
		return nil, false
	}
	return list, true
}

// AsObject возвращает значение как JSON объект
func (v AnswerValue) AsObject() (map[string]interface{}, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal(v, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// OCRConfidence извлекает поле ocr_confidence из объектного значения
// (заполняется мобильным клиентом для вопросов типа ine_ocr)
func (v AnswerValue) OCRConfidence() (float64, bool) {
	obj, ok := v.AsObject()
	if !ok {
		return 0, false
	}
	conf, ok := obj["ocr_confidence"].(float64)
	if !ok {
		return 0, false
	}
	return conf, true
}

// Location - географическая привязка ответа (JSONB)
type Location struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Accuracy  *float64   `json:"accuracy,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Scan реализует интерфейс sql.Scanner для Location
func (l *Location) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(b) == 0 {
		return nil
	}

	return json.Unmarshal(b, l)
}

// Value реализует интерфейс driver.Valuer для Location
func (l Location) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// SurveyResponse представляет одну отправку анкеты бригадистом.
// Пара (user_id, client_id) уникальна: client_id генерируется клиентом
// и стабилен между повторными отправками, что обеспечивает идемпотентность.
type SurveyResponse struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	ClientID    string           `gorm:"size:64;not null;uniqueIndex:uq_responses_user_client" json:"client_id"`
	UserID      uint             `gorm:"not null;index;uniqueIndex:uq_responses_user_client" json:"user_id"`
	VersionID   uint             `gorm:"not null;index" json:"version_id"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Location    *Location        `gorm:"type:jsonb" json:"location,omitempty"`
	DeviceInfo  JSONMap          `gorm:"type:jsonb" json:"device_info,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	Answers     []QuestionAnswer `gorm:"foreignKey:ResponseID" json:"answers"`
}

// TableName определяет имя таблицы для GORM
func (SurveyResponse) TableName() string {
	return "survey_responses"
}

// QuestionAnswer представляет ответ на один вопрос внутри SurveyResponse
type QuestionAnswer struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	ResponseID uint        `gorm:"not null;index" json:"response_id"`
	QuestionID uint        `gorm:"not null;index" json:"question_id"`
	Value      AnswerValue `gorm:"column:answer_value;type:jsonb" json:"answer_value"`
	MediaURL   string      `gorm:"size:1024" json:"media_url,omitempty"`
	AnsweredAt *time.Time  `json:"answered_at,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (QuestionAnswer) TableName() string {
	return "question_answers"
}
