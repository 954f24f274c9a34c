package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Presigner выдает клиенту временные URL для прямой загрузки файлов
// в объектное хранилище. Сервер сами файлы не принимает и факт
// загрузки не проверяет - это обязанность хранилища.
type Presigner interface {
	// PresignUpload возвращает write-capable URL для ключа key,
	// действительный до expiresAt.
	PresignUpload(key string, contentType string, expiresAt time.Time) (string, error)
}

// HMACPresigner строит подписанные URL в формате
// <base>/upload/<key>?expires=<unix>&content_type=...&signature=<hex hmac>.
// Хранилище проверяет подпись и срок действия тем же ключом.
type HMACPresigner struct {
	baseURL    string
	signingKey []byte
}

// NewHMACPresigner создает новый подписывающий сервис
func NewHMACPresigner(baseURL, signingKey string) (*HMACPresigner, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("storage base URL is required")
	}
	if signingKey == "" {
		return nil, fmt.Errorf("storage signing key is required")
	}
	return &HMACPresigner{
		baseURL:    strings.TrimRight(baseURL, "/"),
		signingKey: []byte(signingKey),
	}, nil
}

// PresignUpload реализует Presigner
func (p *HMACPresigner) PresignUpload(key string, contentType string, expiresAt time.Time) (string, error) {
	if key == "" {
		return "", fmt.Errorf("storage key is required")
	}

	expires := strconv.FormatInt(expiresAt.Unix(), 10)

	// Подписываем ключ, срок действия и content type, чтобы клиент
	// не мог подменить ни один из параметров
	mac := hmac.New(sha256.New, p.signingKey)
	fmt.Fprintf(mac, "PUT\n%s\n%s\n%s", key, contentType, expires)
	signature := hex.EncodeToString(mac.Sum(nil))

	query := url.Values{}
	query.Set("expires", expires)
	query.Set("content_type", contentType)
	query.Set("signature", signature)

	return fmt.Sprintf("%s/upload/%s?%s", p.baseURL, url.PathEscape(key), query.Encode()), nil
}
