package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/haofuwu/service-market/internal/api/metrics"
	"github.com/haofuwu/service-market/internal/api/middleware"
	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
)

const (
	entityNeed  = "need"
	entityOffer = "service_offer"
)

func recordMutation(entity, op string, err error) {
	metrics.StoreMutationsTotal.WithLabelValues(entity, op, metrics.ResultLabel(err)).Inc()
}

type NeedHandler struct {
	market ports.MarketService
}

func NewNeedHandler(market ports.MarketService) *NeedHandler {
	return &NeedHandler{market: market}
}

// List returns one page of needs, newest first.
//
// @Summary      List needs
// @Tags         need
// @Produce      json
// @Param        keyword      query     string  false  "Title substring"
// @Param        serviceType  query     string  false  "Service category"
// @Param        region       query     string  false  "Region substring"
// @Param        status       query     string  false  "open or closed"
// @Param        page         query     int     false  "Page (1-based)"
// @Param        size         query     int     false  "Page size"
// @Success      200  {object}  needPageResponse
// @Failure      422  {object}  errorResponse
// @Router       /api/need [get]
func (h *NeedHandler) List(c echo.Context) error {
	var q needListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	page, err := h.market.ListNeeds(c.Request().Context(), q.toFilter())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toNeedPage(page))
}

// MyList returns the caller's own needs.
//
// @Summary      List my needs
// @Tags         need
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  needPageResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/need/my-list [get]
func (h *NeedHandler) MyList(c echo.Context) error {
	var q needListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	page, err := h.market.MyNeeds(c.Request().Context(), middleware.SessionFrom(c), q.toFilter())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toNeedPage(page))
}

// Detail returns a single need.
//
// @Summary      Get need
// @Tags         need
// @Produce      json
// @Param        id   path      string  true  "Need ID"
// @Success      200  {object}  domain.Need
// @Failure      404  {object}  errorResponse
// @Router       /api/need/detail/{id} [get]
func (h *NeedHandler) Detail(c echo.Context) error {
	need, err := h.market.GetNeed(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, need)
}

// Create posts a new need owned by the caller.
//
// @Summary      Create need
// @Tags         need
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createNeedRequest  true  "Need"
// @Success      201   {object}  domain.Need
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/need [post]
func (h *NeedHandler) Create(c echo.Context) error {
	var req createNeedRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	need, err := h.market.AddNeed(c.Request().Context(), middleware.SessionFrom(c), req.toDomain())
	recordMutation(entityNeed, "add", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, need)
}

// Update patches a need that has not received any offer yet.
//
// @Summary      Update need
// @Tags         need
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Need ID"
// @Param        body  body      updateNeedRequest  true  "Fields to change"
// @Success      200   {object}  domain.Need
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/need/{id} [put]
func (h *NeedHandler) Update(c echo.Context) error {
	var req updateNeedRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	need, err := h.market.UpdateNeed(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"), req.toPatch())
	recordMutation(entityNeed, "update", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, need)
}

// Delete removes a need that has not received any offer yet.
//
// @Summary      Delete need
// @Tags         need
// @Security     BearerAuth
// @Param        id   path  string  true  "Need ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/need/{id} [delete]
func (h *NeedHandler) Delete(c echo.Context) error {
	err := h.market.DeleteNeed(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"))
	recordMutation(entityNeed, "delete", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Cancel closes an open need.
//
// @Summary      Cancel need
// @Tags         need
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Need ID"
// @Success      200  {object}  domain.Need
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/need/{id}/cancel [post]
func (h *NeedHandler) Cancel(c echo.Context) error {
	need, err := h.market.CancelNeed(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"))
	recordMutation(entityNeed, "cancel", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, need)
}

// Services lists the offers submitted against a need.
//
// @Summary      Offers for need
// @Tags         need
// @Produce      json
// @Param        id   path      string  true  "Need ID"
// @Success      200  {array}   domain.ServiceOffer
// @Failure      404  {object}  errorResponse
// @Router       /api/need/{id}/services [get]
func (h *NeedHandler) Services(c echo.Context) error {
	offers, err := h.market.OffersForNeed(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if offers == nil {
		offers = []*domain.ServiceOffer{}
	}
	return c.JSON(http.StatusOK, offers)
}
