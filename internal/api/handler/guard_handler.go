package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/haofuwu/service-market/internal/api/metrics"
	"github.com/haofuwu/service-market/internal/api/middleware"
	"github.com/haofuwu/service-market/internal/core/guard"
)

type GuardHandler struct {
	guard *guard.Guard
}

func NewGuardHandler(g *guard.Guard) *GuardHandler {
	return &GuardHandler{guard: g}
}

type routeTableResponse struct {
	Login   string            `json:"login"`
	Landing string            `json:"landing"`
	Routes  []guard.RouteMeta `json:"routes"`
}

// Decide evaluates a client navigation for the caller's session. A missing or
// invalid bearer token is evaluated as anonymous.
//
// @Summary      Route guard decision
// @Tags         navigation
// @Produce      json
// @Param        to    query     string  true   "Target path"
// @Param        from  query     string  false  "Current path"
// @Success      200   {object}  guard.Decision
// @Failure      422   {object}  errorResponse
// @Router       /api/route-guard [get]
func (h *GuardHandler) Decide(c echo.Context) error {
	var q routeGuardQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	d := h.guard.Decide(q.To, q.From, middleware.SessionFrom(c))
	metrics.GuardDecisionsTotal.WithLabelValues(string(d.Outcome), d.Reason).Inc()
	return c.JSON(http.StatusOK, d)
}

// Routes dumps the client route table.
func (h *GuardHandler) Routes(c echo.Context) error {
	t := h.guard.Routes()
	return c.JSON(http.StatusOK, routeTableResponse{
		Login:   t.LoginPath(),
		Landing: t.LandingPath(),
		Routes:  t.Routes(),
	})
}
