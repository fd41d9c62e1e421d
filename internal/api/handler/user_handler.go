package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/haofuwu/service-market/internal/api/middleware"
	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
)

type UserHandler struct {
	authService ports.AuthService
}

func NewUserHandler(authService ports.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// publicUserResponse is the profile other members may see.
type publicUserResponse struct {
	UserID       string          `json:"userId"`
	Username     string          `json:"username"`
	UserType     domain.UserType `json:"userType"`
	RealName     string          `json:"realName"`
	Intro        string          `json:"intro"`
	RegisterTime time.Time       `json:"registerTime"`
}

// Me returns the caller's own profile.
//
// @Summary      Current user profile
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /api/user/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	user, err := h.authService.Profile(c.Request().Context(), sess.UserID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe patches the caller's realName, phone or intro.
//
// @Summary      Update current user profile
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/user/me [put]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req updateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	sess := middleware.SessionFrom(c)
	user, err := h.authService.UpdateProfile(c.Request().Context(), sess.UserID(), req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Detail returns the public profile of any member.
//
// @Summary      Public user profile
// @Tags         user
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  publicUserResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/user/detail/{id} [get]
func (h *UserHandler) Detail(c echo.Context) error {
	user, err := h.authService.Profile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, publicUserResponse{
		UserID:       user.UserID,
		Username:     user.Username,
		UserType:     user.UserType,
		RealName:     user.RealName,
		Intro:        user.Intro,
		RegisterTime: user.RegisterTime,
	})
}
