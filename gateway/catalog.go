package gateway

import (
	"net/http"

	"github.com/example/stockdesk/pkg/auth"
	"github.com/example/stockdesk/pkg/inventory"
	"github.com/gin-gonic/gin"
)

// addCategory godoc
// @Summary Create a category
// @Tags category
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body inventory.CategoryInput true "Request body"
// @Success 201 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /category/addCategory [post]
func (g *Gateway) addCategory(c *gin.Context, who auth.Identity) {
	var in inventory.CategoryInput
	if !g.bind(c, &in) {
		return
	}
	cat, err := g.svc.AddCategory(c.Request.Context(), who, in)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Category added successfully", "category", cat)
}

// getAllCategories godoc
// @Summary List categories
// @Tags category
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope
// @Failure 401 {object} envelope
// @Router /category/getAllCategories [get]
func (g *Gateway) getAllCategories(c *gin.Context, who auth.Identity) {
	cats, err := g.svc.ListCategories(c.Request.Context(), who)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Categories fetched successfully", "categories", cats)
}

// updateCategory godoc
// @Summary Update a category
// @Tags category
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Param request body inventory.CategoryInput true "Request body"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /category/updateCategory/{id} [patch]
func (g *Gateway) updateCategory(c *gin.Context, who auth.Identity) {
	var in inventory.CategoryInput
	if !g.bind(c, &in) {
		return
	}
	cat, err := g.svc.UpdateCategory(c.Request.Context(), who, c.Param("id"), in)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Category updated successfully", "category", cat)
}

// deleteCategory godoc
// @Summary Delete a category
// @Tags category
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /category/deleteCategory/{id} [delete]
func (g *Gateway) deleteCategory(c *gin.Context, who auth.Identity) {
	if err := g.svc.DeleteCategory(c.Request.Context(), who, c.Param("id")); err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Category deleted successfully", "", nil)
}

// addSupplier godoc
// @Summary Create a supplier
// @Tags supplier
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body inventory.SupplierInput true "Request body"
// @Success 201 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /supplier/addSupplier [post]
func (g *Gateway) addSupplier(c *gin.Context, who auth.Identity) {
	var in inventory.SupplierInput
	if !g.bind(c, &in) {
		return
	}
	sup, err := g.svc.AddSupplier(c.Request.Context(), who, in)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Supplier added successfully", "supplier", sup)
}

// getAllSuppliers godoc
// @Summary List suppliers
// @Tags supplier
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope
// @Failure 401 {object} envelope
// @Router /supplier/getAllSuppliers [get]
func (g *Gateway) getAllSuppliers(c *gin.Context, who auth.Identity) {
	sups, err := g.svc.ListSuppliers(c.Request.Context(), who)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Suppliers fetched successfully", "suppliers", sups)
}

// updateSupplier godoc
// @Summary Update a supplier
// @Tags supplier
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Supplier ID"
// @Param request body inventory.SupplierInput true "Request body"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /supplier/updateSupplier/{id} [patch]
func (g *Gateway) updateSupplier(c *gin.Context, who auth.Identity) {
	var in inventory.SupplierInput
	if !g.bind(c, &in) {
		return
	}
	sup, err := g.svc.UpdateSupplier(c.Request.Context(), who, c.Param("id"), in)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Supplier updated successfully", "supplier", sup)
}

// deleteSupplier godoc
// @Summary Delete a supplier
// @Tags supplier
// @Produce json
// @Security BearerAuth
// @Param id path string true "Supplier ID"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /supplier/deleteSupplier/{id} [delete]
func (g *Gateway) deleteSupplier(c *gin.Context, who auth.Identity) {
	if err := g.svc.DeleteSupplier(c.Request.Context(), who, c.Param("id")); err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Supplier deleted successfully", "", nil)
}

// auditHistory godoc
// @Summary Audit history of an entity
// @Tags audit
// @Produce json
// @Security BearerAuth
// @Param entityId path string true "Entity ID"
// @Param limit query int false "Max entries"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /audit/{entityId} [get]
func (g *Gateway) auditHistory(c *gin.Context, who auth.Identity) {
	logs, err := g.svc.AuditHistory(c.Request.Context(), who, c.Param("entityId"), int64(queryLimit(c, 50)))
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Audit logs fetched successfully", "logs", logs)
}
