package services

import (
	"io"
	"testing"

	"order-dashboard/internal/database"
	"order-dashboard/internal/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
)

func newMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	return &database.DB{DB: conn}, mock
}

func newTestLogger() *logger.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &logger.Logger{Logger: log}
}
