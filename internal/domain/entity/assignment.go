package entity

import (
	"time"
)

// AssignmentStatus определяет статус назначения анкеты бригадисту
type AssignmentStatus string

const (
	AssignmentStatusPending    AssignmentStatus = "pending"
	AssignmentStatusInProgress AssignmentStatus = "in_progress"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
)

// Assignment связывает бригадиста с анкетой, которую он должен провести.
// Управление назначениями - обязанность админской части; мобильный
// сервис читает их для списка анкет и счетчиков синхронизации.
type Assignment struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	SurveyID  uint             `gorm:"not null;index" json:"survey_id"`
	Status    AssignmentStatus `gorm:"size:20;not null;default:pending" json:"status"`
	Location  string           `gorm:"size:255" json:"location,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	Survey Survey `gorm:"foreignKey:SurveyID" json:"-"`
}

// TableName определяет имя таблицы для GORM
func (Assignment) TableName() string {
	return "assignments"
}
