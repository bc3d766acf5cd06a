package handlers

import (
	"context"
	"io"
	"net/http"

	"order-dashboard/internal/auth"
	"order-dashboard/internal/logger"
	"order-dashboard/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func newTestLogger() *logger.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &logger.Logger{Logger: log}
}

func withClaims(r *http.Request, userID uuid.UUID, role models.Role) *http.Request {
	claims := &auth.Claims{
		UserID: userID.String(),
		Email:  "test@example.com",
		Name:   "Тест",
		Role:   string(role),
	}
	ctx := context.WithValue(r.Context(), claimsContextKey, claims)
	return r.WithContext(ctx)
}
