package handler

import (
	"net/http"

	"stockroom/internal/apierror"
	"stockroom/internal/dto"
	"stockroom/internal/middleware"
	"stockroom/internal/model"
	"stockroom/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler { return &OrdersHandler{svc: svc} }

// Place godoc
// @Summary      Place an order
// @Description  Creates a pending order. When supplier_id is omitted, the best supplier for the product is picked automatically.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.PlaceOrderRequest true "Order data"
// @Success      201  {object} dto.OrderResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/orders [post]
func (h *OrdersHandler) Place(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Place(c.Request.Context(), userID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Approve godoc
// @Summary      Approve a pending order
// @Description  Atomically decrements stock, materializes a sale at the product's current price, and marks the order approved. A 409 with "insufficient stock" leaves the order pending.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Order UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/orders/{id}/approve [post]
func (h *OrdersHandler) Approve(c *gin.Context) {
	h.decide(c, service.ActionApprove)
}

// Reject godoc
// @Summary      Reject a pending order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Order UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/orders/{id}/reject [post]
func (h *OrdersHandler) Reject(c *gin.Context) {
	h.decide(c, service.ActionReject)
}

func (h *OrdersHandler) decide(c *gin.Context, action service.DecideAction) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.Decide(c.Request.Context(), id, action); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListPending godoc
// @Summary      List pending orders awaiting decision
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.OrderResponse
// @Router       /v1/orders/pending [get]
func (h *OrdersHandler) ListPending(c *gin.Context) {
	resp, err := h.svc.ListPending(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListConfirmed godoc
// @Summary      List approved orders
// @Description  Managers see all approved orders; users see their own.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.OrderResponse
// @Router       /v1/orders/confirmed [get]
func (h *OrdersHandler) ListConfirmed(c *gin.Context) {
	claims := middleware.GetClaims(c)
	callerID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.ListConfirmed(c.Request.Context(), callerID, model.Role(claims.Role))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordSale godoc
// @Summary      Record a walk-in sale
// @Description  Decrements stock and creates a sale at the product's current price, with no order involved.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RecordSaleRequest true "Sale data"
// @Success      201  {object} dto.SaleResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sales [post]
func (h *OrdersHandler) RecordSale(c *gin.Context) {
	var req dto.RecordSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.RecordSale(c.Request.Context(), userID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
