package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/haofuwu/service-market/internal/api/middleware"
	"github.com/haofuwu/service-market/internal/core/ports"
)

type AdminHandler struct {
	stats ports.StatsService
}

func NewAdminHandler(stats ports.StatsService) *AdminHandler {
	return &AdminHandler{stats: stats}
}

// Stats returns per-month, per-region need and accepted-offer counts.
//
// @Summary      Monthly statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        startMonth  query     string  false  "First month (YYYY-MM), required with endMonth"
// @Param        endMonth    query     string  false  "Last month (YYYY-MM), required with startMonth"
// @Param        region      query     string  false  "Region substring"
// @Success      200  {object}  ports.StatsResult
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /api/admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	var q statsQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	res, err := h.stats.Monthly(c.Request().Context(), middleware.SessionFrom(c), ports.StatsQuery{
		StartMonth:    q.StartMonth,
		EndMonth:      q.EndMonth,
		RegionKeyword: q.RegionKeyword,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
