package gateway

import (
	"net/http"

	"github.com/example/stockdesk/pkg/auth"
	"github.com/example/stockdesk/pkg/inventory"
	"github.com/gin-gonic/gin"
)

// placeOrder godoc
// @Summary Place an order
// @Tags order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body inventory.PlaceOrderInput true "Request body"
// @Success 201 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /order/placeOrder [post]
func (g *Gateway) placeOrder(c *gin.Context, who auth.Identity) {
	var in inventory.PlaceOrderInput
	if !g.bind(c, &in) {
		return
	}
	order, err := g.svc.PlaceOrder(c.Request.Context(), who, in)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Order placed successfully", "order", order)
}

// changeOrderStatus godoc
// @Summary Change the status of an order
// @Tags order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body inventory.ChangeStatusInput true "Request body"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /order/changeOrderStatus [patch]
func (g *Gateway) changeOrderStatus(c *gin.Context, who auth.Identity) {
	var in inventory.ChangeStatusInput
	if !g.bind(c, &in) {
		return
	}
	order, err := g.svc.ChangeOrderStatus(c.Request.Context(), who, in)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Order status updated successfully", "order", order)
}

// getAllOrders godoc
// @Summary List all orders
// @Tags order
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope
// @Failure 401 {object} envelope
// @Router /order/getAllOrders [get]
func (g *Gateway) getAllOrders(c *gin.Context, who auth.Identity) {
	orders, err := g.svc.AllOrders(c.Request.Context(), who)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Orders fetched successfully", "orders", orders)
}

// getUserOrders godoc
// @Summary List the caller's orders
// @Tags order
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope
// @Failure 401 {object} envelope
// @Router /order/getUserOrders [get]
func (g *Gateway) getUserOrders(c *gin.Context, who auth.Identity) {
	orders, err := g.svc.UserOrders(c.Request.Context(), who)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "User orders fetched successfully", "orders", orders)
}

// deleteOrder godoc
// @Summary Delete an order and restore its stock
// @Tags order
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /order/deleteOrder/{id} [delete]
func (g *Gateway) deleteOrder(c *gin.Context, who auth.Identity) {
	if err := g.svc.DeleteOrder(c.Request.Context(), who, c.Param("id")); err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Order deleted successfully", "", nil)
}

// createPaymentOrder godoc
// @Summary Open a payment gateway order
// @Tags payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body inventory.GatewayOrderInput true "Request body"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /payment/create-order [post]
func (g *Gateway) createPaymentOrder(c *gin.Context, who auth.Identity) {
	var in inventory.GatewayOrderInput
	if !g.bind(c, &in) {
		return
	}
	order, err := g.svc.CreateGatewayOrder(c.Request.Context(), who, in)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Payment order created successfully", "order", order)
}

// verifyPayment godoc
// @Summary Verify a checkout signature
// @Tags payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body inventory.VerifyInput true "Request body"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /payment/verify-payment [post]
func (g *Gateway) verifyPayment(c *gin.Context, who auth.Identity) {
	var in inventory.VerifyInput
	if !g.bind(c, &in) {
		return
	}
	p, err := g.svc.VerifyPayment(c.Request.Context(), who, in)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Payment verified successfully", "payment", p)
}
