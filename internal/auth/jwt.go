package auth

import (
	"fmt"
	"time"

	"order-dashboard/internal/config"
	"order-dashboard/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 24 * time.Hour

// Claims представляет полезную нагрузку токена доступа
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Manager выпускает и проверяет JWT токены (HS256)
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewManager создает менеджер токенов из конфигурации
func NewManager(cfg *config.JWTConfig) *Manager {
	ttl := defaultTokenTTL
	if cfg.TTLHours > 0 {
		ttl = time.Duration(cfg.TTLHours) * time.Hour
	}

	return &Manager{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		issuer: cfg.Issuer,
	}
}

// GenerateToken выпускает токен для пользователя
func (m *Manager) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Name:   user.Name,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ValidateToken проверяет подпись и срок действия токена.
// Роль в claims нормализуется, старые токены с "ADMIN" остаются валидными.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	role, ok := models.NormalizeRole(claims.Role)
	if !ok {
		return nil, fmt.Errorf("token carries unknown role %q", claims.Role)
	}
	claims.Role = string(role)

	return claims, nil
}
