package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/haofuwu/service-market/internal/api/metrics"
	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
	"github.com/haofuwu/service-market/internal/core/validate"
)

// UsernameChecker is a uniqueness check that reports which mode it runs in.
type UsernameChecker interface {
	ports.UsernameChecker
	Mode() string
}

type AuthHandler struct {
	authService ports.AuthService
	checker     UsernameChecker
}

func NewAuthHandler(authService ports.AuthService, checker UsernameChecker) *AuthHandler {
	return &AuthHandler{authService: authService, checker: checker}
}

// Register creates a new regular account after the uniqueness check passes.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	unique, err := h.checker.IsUnique(ctx, req.Username)
	if err != nil {
		return err
	}
	if !unique {
		return domain.ErrUsernameTaken
	}

	user, err := h.authService.Register(ctx, ports.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		RealName: req.RealName,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Login authenticates a user and returns a session token with the profile.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	metrics.LoginsTotal.WithLabelValues(metrics.ResultLabel(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// CheckUsername answers whether a username is still free, using the
// {code, data, msg} envelope consumed by remote uniqueness checks.
//
// @Summary      Check username availability
// @Tags         auth
// @Produce      json
// @Param        username  query     string  true  "Username to check"
// @Success      200       {object}  validate.UsernameCheckResponse
// @Failure      400       {object}  validate.UsernameCheckResponse
// @Failure      503       {object}  validate.UsernameCheckResponse
// @Router       /api/check-username [get]
func (h *AuthHandler) CheckUsername(c echo.Context) error {
	var q checkUsernameQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	unique, err := h.checker.IsUnique(c.Request().Context(), q.Username)
	result := "unique"
	switch {
	case err != nil:
		result = metrics.ResultLabel(err)
	case !unique:
		result = "taken"
	}
	metrics.UsernameChecksTotal.WithLabelValues(h.checker.Mode(), result).Inc()

	switch {
	case err == nil:
		return c.JSON(http.StatusOK, validate.UsernameCheckResponse{
			Code: validate.CodeOK,
			Data: &validate.UsernameCheckData{IsUnique: unique},
		})
	case errors.Is(err, domain.ErrValidation):
		return c.JSON(http.StatusBadRequest, validate.UsernameCheckResponse{
			Code: http.StatusBadRequest,
			Msg:  "username is required",
		})
	case errors.Is(err, domain.ErrUsernameTaken):
		return c.JSON(http.StatusOK, validate.UsernameCheckResponse{
			Code: validate.CodeOK,
			Data: &validate.UsernameCheckData{IsUnique: false},
		})
	default:
		return c.JSON(http.StatusServiceUnavailable, validate.UsernameCheckResponse{
			Code: http.StatusServiceUnavailable,
			Msg:  "username check unavailable",
		})
	}
}
