package delivery

import (
	"net/http"

	"projexa/internal/domain"
	"projexa/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	useCase domain.OrderUseCase
	log     *logrus.Logger
}

func NewOrderHandler(uc domain.OrderUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *OrderHandler) RegisterRoutes(router gin.IRouter) {
	orders := router.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("/:id", h.GetOrder)
	}
	router.GET("/track/:reference", h.TrackOrder)

	admin := router.Group("/admin/orders")
	{
		admin.GET("", h.ListOrders)
		admin.GET("/stats", h.Stats)
		admin.PATCH("/:id/status", h.UpdateOrderStatus)
		admin.PATCH("/:id/payment-status", h.UpdatePaymentStatus)
	}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var input domain.NewOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.log.Warnf("Failed to bind JSON for create order: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.useCase.CreateOrder(c.Request.Context(), input)
	if err != nil {
		h.log.Errorf("Failed to create order for %s: %v", input.CustomerEmail, err)
		ErrorResponse(c, mapErrorToStatus(err), errorMessage("Failed to create order", err))
		return
	}

	h.log.Infof("Order %d created with reference %s", created.OrderID, created.PaymentReference)
	SuccessResponse(c, http.StatusCreated, "Order created successfully", created)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	order, err := h.useCase.GetOrder(c.Request.Context(), id)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), errorMessage("Failed to retrieve order", err))
		return
	}
	if order == nil {
		ErrorResponse(c, http.StatusNotFound, "Order not found")
		return
	}
	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *OrderHandler) TrackOrder(c *gin.Context) {
	order, err := h.useCase.GetOrderByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), errorMessage("Failed to track order", err))
		return
	}
	if order == nil {
		ErrorResponse(c, http.StatusNotFound, "No order with this payment reference")
		return
	}
	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.useCase.ListOrders(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), errorMessage("Failed to list orders", err))
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.useCase.Stats(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), errorMessage("Failed to load order stats", err))
		return
	}
	SuccessResponse(c, http.StatusOK, "Order stats retrieved successfully", stats)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body struct {
		Status domain.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	caller := middleware.CallerFrom(c)
	updated, err := h.useCase.UpdateOrderStatus(c.Request.Context(), caller, id, body.Status)
	h.respondUpdate(c, "status", id, updated, err)
}

func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body struct {
		PaymentStatus domain.PaymentStatus `json:"paymentStatus" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	caller := middleware.CallerFrom(c)
	updated, err := h.useCase.UpdatePaymentStatus(c.Request.Context(), caller, id, body.PaymentStatus)
	h.respondUpdate(c, "payment status", id, updated, err)
}

func (h *OrderHandler) respondUpdate(c *gin.Context, what string, id int64, updated bool, err error) {
	if err != nil {
		h.log.Warnf("Rejected %s update for order %d: %v", what, id, err)
		ErrorResponse(c, mapErrorToStatus(err), errorMessage("Failed to update order "+what, err))
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, Response{
			Status:  "Fail",
			Message: "Order " + what + " was not updated",
			Data:    gin.H{"success": false},
		})
		return
	}
	SuccessResponse(c, http.StatusOK, "Order "+what+" updated successfully", gin.H{"success": true})
}
