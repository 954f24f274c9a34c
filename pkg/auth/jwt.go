package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	apperrors "github.com/yourusername/brigada-api/internal/pkg/errors"
)

// JWTCustomClaims содержит пользовательские поля для токена
type JWTCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService проверяет access-токены, выпущенные внешним auth-сервисом.
// Токены подписываются общим секретом (HS256); выпуск, ротация и отзыв
// токенов находятся вне зоны ответственности этого сервиса.
type JWTService struct {
	secret []byte
}

// NewJWTService создает новый сервис JWT и возвращает ошибку при проблемах
func NewJWTService(secret string) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required for JWTService")
	}
	return &JWTService{secret: []byte(secret)}, nil
}

// ValidateToken проверяет подпись и срок действия токена
// и возвращает его claims
func (s *JWTService) ValidateToken(tokenString string) (*JWTCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*JWTCustomClaims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrUnauthorized
	}
	if claims.UserID == 0 {
		return nil, fmt.Errorf("%w: token has no user_id claim", apperrors.ErrUnauthorized)
	}

	return claims, nil
}
