package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
	"github.com/haofuwu/service-market/internal/core/validate"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (string, *domain.User, error)
	profileFn  func(ctx context.Context, userID string) (*domain.User, error)
	updateFn   func(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Authenticate(context.Context, string) (domain.Session, error) {
	return domain.Session{}, domain.ErrUnauthenticated
}

func (s *stubAuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.profileFn(ctx, userID)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
	return s.updateFn(ctx, userID, patch)
}

type stubChecker struct {
	unique bool
	err    error
	calls  int
}

func (s *stubChecker) IsUnique(context.Context, string) (bool, error) {
	s.calls++
	return s.unique, s.err
}

func (s *stubChecker) Mode() string { return "local" }

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

const validRegistration = `{"username":"alice","password":"Abc123","realName":"Alice","phone":"13800000000"}`

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Username != "alice" || in.Phone != "13800000000" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{UserID: "4", Username: in.Username, UserType: domain.UserTypeRegular}, nil
		},
	}
	handler := NewAuthHandler(stub, &stubChecker{unique: true})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/register", validRegistration), rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["username"] != "alice" || user["userType"] != "regular" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, ok := resp["token"]; ok {
		t.Fatalf("register must not log in")
	}
}

func TestAuthHandler_Register_UsernameTaken(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("register must not be called for a taken username")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, &stubChecker{unique: false})

	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/register", validRegistration), httptest.NewRecorder())
	err := handler.Register(c)
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuthHandler_Register_CheckUnavailable(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{}, &stubChecker{err: domain.ErrUniquenessUnavailable})

	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/register", validRegistration), httptest.NewRecorder())
	if err := handler.Register(c); !errors.Is(err, domain.ErrUniquenessUnavailable) {
		t.Fatalf("expected ErrUniquenessUnavailable, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidInput(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"weak password", `{"username":"alice","password":"abcdef","phone":"13800000000"}`},
		{"bad phone", `{"username":"alice","password":"Abc123","phone":"12345"}`},
		{"missing username", `{"password":"Abc123","phone":"13800000000"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEcho()
			checker := &stubChecker{unique: true}
			handler := NewAuthHandler(&stubAuthService{}, checker)

			c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/register", tc.body), httptest.NewRecorder())
			if err := handler.Register(c); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if checker.calls != 0 {
				t.Fatalf("uniqueness must not be checked for invalid input")
			}
		})
	}
}

func TestAuthHandler_Register_UnknownField(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{}, &stubChecker{unique: true})

	body := `{"username":"alice","password":"Abc123","phone":"13800000000","userType":"admin"}`
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/register", body), httptest.NewRecorder())

	err := handler.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, *domain.User, error) {
			if username == "admin" && password == "Ww123456" {
				return "tok", &domain.User{UserID: "1", Username: "admin", UserType: domain.UserTypeAdmin}, nil
			}
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub, &stubChecker{unique: true})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"admin","password":"Ww123456"}`), rec)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "tok" || resp.User == nil || resp.User.UserID != "1" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	c = e.NewContext(jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"admin","password":"nope"}`), httptest.NewRecorder())
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_CheckUsername(t *testing.T) {
	cases := []struct {
		name       string
		checker    *stubChecker
		wantStatus int
		wantCode   int
		wantUnique *bool
	}{
		{"unique", &stubChecker{unique: true}, http.StatusOK, validate.CodeOK, boolPtr(true)},
		{"taken", &stubChecker{unique: false}, http.StatusOK, validate.CodeOK, boolPtr(false)},
		{"empty", &stubChecker{err: domain.ErrValidation}, http.StatusBadRequest, http.StatusBadRequest, nil},
		{"unavailable", &stubChecker{err: domain.ErrUniquenessUnavailable}, http.StatusServiceUnavailable, http.StatusServiceUnavailable, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEcho()
			handler := NewAuthHandler(&stubAuthService{}, tc.checker)

			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/check-username?username=alice", nil), rec)
			if err := handler.CheckUsername(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}

			var resp validate.UsernameCheckResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Fatalf("expected code %d, got %d", tc.wantCode, resp.Code)
			}
			if tc.wantUnique == nil {
				if resp.Data != nil || resp.Msg == "" {
					t.Fatalf("expected msg without data, got %+v", resp)
				}
				return
			}
			if resp.Data == nil || resp.Data.IsUnique != *tc.wantUnique {
				t.Fatalf("unexpected data: %+v", resp.Data)
			}
		})
	}
}

func boolPtr(b bool) *bool { return &b }
