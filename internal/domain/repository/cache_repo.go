package repository

import (
	"time"
)

// CacheRepository определяет методы для работы с кешем.
// Используется для отметок последней синхронизации и последних
// скачанных клиентом версий анкет.
type CacheRepository interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string) (string, error)
	Delete(key string) error
	Exists(key string) (bool, error)
}
