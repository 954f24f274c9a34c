package service

import "errors"

// Определяем кастомные ошибки для сервисов
var (
	// ErrBatchSizeInvalid - нарушение ограничения на размер батча (1..50).
	// Отклоняет весь запрос, ни один элемент не обрабатывается.
	ErrBatchSizeInvalid = errors.New("batch must contain between 1 and 50 responses")

	// ErrVersionNotFound - версия анкеты с указанным id не существует.
	ErrVersionNotFound = errors.New("survey version not found")

	// ErrVersionNotPublished - версия существует, но не опубликована.
	ErrVersionNotPublished = errors.New("survey version is not published")

	// ErrFileTooLarge - размер файла превышает допустимый максимум.
	ErrFileTooLarge = errors.New("file size exceeds maximum")

	// ErrUnsupportedMimeType - mime-тип файла не входит в список разрешенных.
	ErrUnsupportedMimeType = errors.New("unsupported file type")

	// ErrResponseNotFound - client_id не указывает на сохраненный ответ вызывающего.
	ErrResponseNotFound = errors.New("response not found for client_id")

	// ErrInvalidStatusFilter - неизвестный статус назначения в фильтре.
	ErrInvalidStatusFilter = errors.New("invalid assignment status filter")
)
