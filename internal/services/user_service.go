package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"order-dashboard/internal/apperror"
	"order-dashboard/internal/database"
	"order-dashboard/internal/logger"
	"order-dashboard/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserService представляет сервис для работы с пользователями
type UserService struct {
	db         *database.DB
	log        *logger.Logger
	bcryptCost int
}

// NewUserService создает новый экземпляр сервиса пользователей
func NewUserService(db *database.DB, log *logger.Logger, bcryptCost int) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		db:         db,
		log:        log,
		bcryptCost: bcryptCost,
	}
}

// Register регистрирует нового пользователя. Роль нормализуется к нижнему
// регистру, неизвестная роль отклоняется.
func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if err := validateRegisterRequest(req); err != nil {
		return nil, err
	}

	role, ok := models.NormalizeRole(req.Role)
	if !ok {
		return nil, apperror.Validation("role must be admin or customer", nil)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, apperror.Conflict("email is already registered", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	query := `
		INSERT INTO users (id, name, email, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.Role, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User registered successfully")

	return user, nil
}

// Authenticate проверяет учетные данные и возвращает пользователя. Неверная
// пара email/пароль дает одну и ту же ошибку, чтобы не раскрывать, какая
// часть не совпала.
func (s *UserService) Authenticate(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	if req == nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, apperror.Validation("email and password are required", nil)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user := &models.User{}
	var rawRole string
	query := `
		SELECT id, name, email, role, password_hash, created_at
		FROM users
		WHERE email = $1
	`
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &rawRole, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.Unauthorized("invalid email or password", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Роли из старых записей могли храниться в верхнем регистре
	role, ok := models.NormalizeRole(rawRole)
	if !ok {
		return nil, fmt.Errorf("user %s has unknown role %q", user.ID, rawRole)
	}
	user.Role = role

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized("invalid email or password", err)
	}

	return user, nil
}

// GetUser получает пользователя по ID
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user := &models.User{}
	var rawRole string
	query := `
		SELECT id, name, email, role, password_hash, created_at
		FROM users
		WHERE id = $1
	`
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&user.ID, &user.Name, &user.Email, &rawRole, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user not found", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	role, ok := models.NormalizeRole(rawRole)
	if !ok {
		return nil, fmt.Errorf("user %s has unknown role %q", user.ID, rawRole)
	}
	user.Role = role

	return user, nil
}

func validateRegisterRequest(req *models.RegisterRequest) error {
	if req == nil {
		return apperror.Validation("request body is required", nil)
	}
	if strings.TrimSpace(req.Name) == "" {
		return apperror.Validation("name is required", nil)
	}
	if strings.TrimSpace(req.Email) == "" || !strings.Contains(req.Email, "@") {
		return apperror.Validation("a valid email is required", nil)
	}
	if len(req.Password) < 8 {
		return apperror.Validation("password must be at least 8 characters", nil)
	}
	return nil
}
