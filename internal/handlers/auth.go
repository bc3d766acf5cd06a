package handlers

import (
	"encoding/json"
	"net/http"

	"order-dashboard/internal/logger"
	"order-dashboard/internal/models"
)

// AuthHandler обрабатывает регистрацию и вход пользователей
type AuthHandler struct {
	users    UserService
	tokens   TokenManager
	producer EventProducer
	log      *logger.Logger
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(users UserService, tokens TokenManager, producer EventProducer, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		tokens:   tokens,
		producer: producer,
		log:      log,
	}
}

// Register регистрирует нового пользователя и сразу выдает токен
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to register user")
		return
	}

	token, err := h.tokens.GenerateToken(user)
	if err != nil {
		h.log.WithError(err).Error("Failed to issue token after registration")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	// Публикация события в Kafka
	if err := h.producer.PublishUserRegistered(user); err != nil {
		h.log.WithError(err).Error("Failed to publish user registered event")
		// Не возвращаем ошибку клиенту, так как пользователь уже создан
	}

	writeJSONResponse(w, http.StatusCreated, &models.AuthResponse{User: user, Token: token})
}

// Login проверяет учетные данные и выдает токен
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.Authenticate(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to authenticate user")
		return
	}

	token, err := h.tokens.GenerateToken(user)
	if err != nil {
		h.log.WithError(err).Error("Failed to issue token")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	h.log.WithField("user_id", user.ID).Info("User logged in")
	writeJSONResponse(w, http.StatusOK, &models.AuthResponse{User: user, Token: token})
}
