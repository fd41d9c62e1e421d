package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/haofuwu/service-market/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{"need not found", fmt.Errorf("lookup: %w", domain.ErrNeedNotFound), http.StatusNotFound, "need not found"},
		{"offer not found", domain.ErrServiceOfferNotFound, http.StatusNotFound, "service offer not found"},
		{"conflict keeps detail", fmt.Errorf("%w: need need_1 has responses", domain.ErrConflict), http.StatusConflict, "record state does not permit this operation: need need_1 has responses"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"no session", domain.ErrUnauthenticated, http.StatusUnauthorized, "login required"},
		{"validation", fmt.Errorf("%w: title is required", domain.ErrValidation), http.StatusUnprocessableEntity, "validation failed: title is required"},
		{"username taken", domain.ErrUserExists, http.StatusConflict, "username already taken"},
		{"check unavailable", domain.ErrUniquenessUnavailable, http.StatusServiceUnavailable, "username check unavailable"},
		{"storage", fmt.Errorf("%w: disk full", domain.ErrStorage), http.StatusServiceUnavailable, "storage unavailable"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			h(tc.err, c)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Error != tc.wantMsg {
				t.Fatalf("expected %q, got %q", tc.wantMsg, resp.Error)
			}
		})
	}
}
