package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"order-dashboard/internal/apperror"
	"order-dashboard/internal/auth"
	"order-dashboard/internal/models"

	"github.com/google/uuid"
)

type stubUserService struct {
	registerUser *models.User
	registerErr  error
	authUser     *models.User
	authErr      error
}

func (s *stubUserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	return s.registerUser, s.registerErr
}

func (s *stubUserService) Authenticate(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	return s.authUser, s.authErr
}

type stubTokenManager struct {
	token string
	err   error
}

func (s *stubTokenManager) GenerateToken(user *models.User) (string, error) {
	return s.token, s.err
}

func (s *stubTokenManager) ValidateToken(tokenString string) (*auth.Claims, error) {
	return nil, nil
}

type recordingProducer struct {
	created    []*models.Order
	updated    []*models.Order
	deleted    []uuid.UUID
	registered []*models.User
	err        error
}

func (p *recordingProducer) PublishOrderCreated(order *models.Order) error {
	p.created = append(p.created, order)
	return p.err
}

func (p *recordingProducer) PublishOrderUpdated(order *models.Order) error {
	p.updated = append(p.updated, order)
	return p.err
}

func (p *recordingProducer) PublishOrderDeleted(orderID uuid.UUID) error {
	p.deleted = append(p.deleted, orderID)
	return p.err
}

func (p *recordingProducer) PublishUserRegistered(user *models.User) error {
	p.registered = append(p.registered, user)
	return p.err
}

func TestAuthHandler_Register_Success(t *testing.T) {
	user := &models.User{ID: uuid.New(), Name: "Анна", Email: "anna@example.com", Role: models.RoleCustomer}
	producer := &recordingProducer{}
	h := NewAuthHandler(&stubUserService{registerUser: user}, &stubTokenManager{token: "signed-token"}, producer, newTestLogger())

	body := `{"name":"Анна","email":"anna@example.com","password":"password123","role":"customer"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.AuthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token != "signed-token" || resp.User == nil || resp.User.Email != "anna@example.com" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if len(producer.registered) != 1 {
		t.Fatalf("expected user registered event, got %d", len(producer.registered))
	}
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	h := NewAuthHandler(&stubUserService{registerErr: apperror.Conflict("email is already registered", nil)},
		&stubTokenManager{}, &recordingProducer{}, newTestLogger())

	body := `{"name":"Анна","email":"anna@example.com","password":"password123","role":"customer"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestAuthHandler_Register_BadBody(t *testing.T) {
	h := NewAuthHandler(&stubUserService{}, &stubTokenManager{}, &recordingProducer{}, newTestLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	user := &models.User{ID: uuid.New(), Name: "Анна", Email: "anna@example.com", Role: models.RoleAdmin}
	h := NewAuthHandler(&stubUserService{authUser: user}, &stubTokenManager{token: "signed-token"}, &recordingProducer{}, newTestLogger())

	body := `{"email":"anna@example.com","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.AuthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token != "signed-token" {
		t.Fatalf("unexpected token: %q", resp.Token)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&stubUserService{authErr: apperror.Unauthorized("invalid email or password", nil)},
		&stubTokenManager{}, &recordingProducer{}, newTestLogger())

	body := `{"email":"anna@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthHandler_Login_MethodNotAllowed(t *testing.T) {
	h := NewAuthHandler(&stubUserService{}, &stubTokenManager{}, &recordingProducer{}, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
