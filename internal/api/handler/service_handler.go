package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/haofuwu/service-market/internal/api/middleware"
	"github.com/haofuwu/service-market/internal/core/ports"
)

type ServiceHandler struct {
	market ports.MarketService
}

func NewServiceHandler(market ports.MarketService) *ServiceHandler {
	return &ServiceHandler{market: market}
}

// List returns one page of service offers, newest first.
//
// @Summary      List service offers
// @Tags         service
// @Produce      json
// @Param        needId       query     string  false  "Need ID"
// @Param        keyword      query     string  false  "Title substring"
// @Param        serviceType  query     string  false  "Service category"
// @Param        status       query     string  false  "pending, accepted or rejected"
// @Param        page         query     int     false  "Page (1-based)"
// @Param        size         query     int     false  "Page size"
// @Success      200  {object}  offerPageResponse
// @Failure      422  {object}  errorResponse
// @Router       /api/service-self [get]
func (h *ServiceHandler) List(c echo.Context) error {
	var q offerListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	page, err := h.market.ListServiceOffers(c.Request().Context(), q.toFilter())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOfferPage(page))
}

// MyList returns every offer the caller has submitted.
//
// @Summary      List my service offers
// @Tags         service
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.ServiceOffer
// @Failure      401  {object}  errorResponse
// @Router       /api/service-self/my-list [get]
func (h *ServiceHandler) MyList(c echo.Context) error {
	return c.JSON(http.StatusOK, h.market.MyServiceOffers(c.Request().Context(), middleware.SessionFrom(c)))
}

// Detail returns a single service offer.
//
// @Summary      Get service offer
// @Tags         service
// @Produce      json
// @Param        id   path      string  true  "Service offer ID"
// @Success      200  {object}  domain.ServiceOffer
// @Failure      404  {object}  errorResponse
// @Router       /api/service-self/detail/{id} [get]
func (h *ServiceHandler) Detail(c echo.Context) error {
	offer, err := h.market.GetServiceOffer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, offer)
}

// Create submits an offer against an open need.
//
// @Summary      Create service offer
// @Tags         service
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createOfferRequest  true  "Service offer"
// @Success      201   {object}  domain.ServiceOffer
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/service-self [post]
func (h *ServiceHandler) Create(c echo.Context) error {
	var req createOfferRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	offer, err := h.market.AddServiceOffer(c.Request().Context(), middleware.SessionFrom(c), req.toDomain())
	recordMutation(entityOffer, "add", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, offer)
}

// Update patches a pending offer.
//
// @Summary      Update service offer
// @Tags         service
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Service offer ID"
// @Param        body  body      updateOfferRequest  true  "Fields to change"
// @Success      200   {object}  domain.ServiceOffer
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/service-self/{id} [put]
func (h *ServiceHandler) Update(c echo.Context) error {
	var req updateOfferRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	offer, err := h.market.UpdateServiceOffer(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"), req.toPatch())
	recordMutation(entityOffer, "update", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, offer)
}

// Delete removes a pending offer.
//
// @Summary      Delete service offer
// @Tags         service
// @Security     BearerAuth
// @Param        id   path  string  true  "Service offer ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/service-self/{id} [delete]
func (h *ServiceHandler) Delete(c echo.Context) error {
	err := h.market.DeleteServiceOffer(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"))
	recordMutation(entityOffer, "delete", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Accept marks a pending offer accepted and rejects its pending siblings.
// Only the need owner or an admin may decide.
//
// @Summary      Accept service offer
// @Tags         service
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Service offer ID"
// @Success      200  {object}  domain.ServiceOffer
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/service-self/{id}/accept [post]
func (h *ServiceHandler) Accept(c echo.Context) error {
	offer, err := h.market.AcceptServiceOffer(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"))
	recordMutation(entityOffer, "accept", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, offer)
}

// Reject marks a pending offer rejected.
//
// @Summary      Reject service offer
// @Tags         service
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Service offer ID"
// @Success      200  {object}  domain.ServiceOffer
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/service-self/{id}/reject [post]
func (h *ServiceHandler) Reject(c echo.Context) error {
	offer, err := h.market.RejectServiceOffer(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"))
	recordMutation(entityOffer, "reject", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, offer)
}
