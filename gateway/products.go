package gateway

import (
	"net/http"
	"strconv"

	"github.com/example/stockdesk/pkg/auth"
	"github.com/example/stockdesk/pkg/inventory"
	"github.com/gin-gonic/gin"
)

const maxHistoryLimit = 500

// queryLimit reads ?limit=, falling back to def for missing or bad values.
func queryLimit(c *gin.Context, def int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > maxHistoryLimit {
		return maxHistoryLimit
	}
	return n
}

// addProduct godoc
// @Summary Create a product
// @Tags product
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body inventory.ProductInput true "Request body"
// @Success 201 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /product/addProduct [post]
func (g *Gateway) addProduct(c *gin.Context, who auth.Identity) {
	var in inventory.ProductInput
	if !g.bind(c, &in) {
		return
	}
	p, err := g.svc.AddProduct(c.Request.Context(), who, in)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Product added successfully", "product", p)
}

// getAllProducts godoc
// @Summary List products with category and supplier
// @Tags product
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope
// @Failure 401 {object} envelope
// @Router /product/getAllProducts [get]
func (g *Gateway) getAllProducts(c *gin.Context, who auth.Identity) {
	products, err := g.svc.ListProducts(c.Request.Context(), who)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Products fetched successfully", "products", products)
}

// updateProduct godoc
// @Summary Update a product
// @Tags product
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body inventory.ProductInput true "Request body"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /product/updateProduct/{id} [patch]
func (g *Gateway) updateProduct(c *gin.Context, who auth.Identity) {
	var in inventory.ProductInput
	if !g.bind(c, &in) {
		return
	}
	p, err := g.svc.UpdateProduct(c.Request.Context(), who, c.Param("id"), in)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Product updated successfully", "product", p)
}

// deleteProduct godoc
// @Summary Delete a product
// @Tags product
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /product/deleteProduct/{id} [delete]
func (g *Gateway) deleteProduct(c *gin.Context, who auth.Identity) {
	if err := g.svc.DeleteProduct(c.Request.Context(), who, c.Param("id")); err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Product deleted successfully", "", nil)
}

// stockHistory godoc
// @Summary Stock movements of a product
// @Tags product
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param limit query int false "Max entries"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /product/stockHistory/{id} [get]
func (g *Gateway) stockHistory(c *gin.Context, who auth.Identity) {
	moves, err := g.svc.StockHistory(c.Request.Context(), who, c.Param("id"), queryLimit(c, 50))
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Stock history fetched successfully", "movements", moves)
}
