package inventory_test

import (
	"context"
	"testing"

	"github.com/example/stockdesk/pkg/inventory"
	"github.com/example/stockdesk/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, inventory.Options{})

	c, err := f.svc.AddCategory(ctx, f.admin, inventory.CategoryInput{Name: "Beverages", Description: "drinks"})
	require.NoError(t, err)

	_, err = f.svc.AddCategory(ctx, f.admin, inventory.CategoryInput{Name: "Beverages", Description: "again"})
	assert.Equal(t, inventory.KindConflict, inventory.KindOf(err))

	_, err = f.svc.AddCategory(ctx, f.admin, inventory.CategoryInput{Name: "Snacks"})
	assert.Equal(t, inventory.KindValidation, inventory.KindOf(err))

	updated, err := f.svc.UpdateCategory(ctx, f.admin, c.ID.Hex(), inventory.CategoryInput{Name: "Drinks", Description: "cold"})
	require.NoError(t, err)
	assert.Equal(t, "Drinks", updated.Name)
	assert.Equal(t, c.CreatedAt, updated.CreatedAt)

	list, err := f.svc.ListCategories(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "cold", list[0].Description)

	require.NoError(t, f.svc.DeleteCategory(ctx, f.admin, c.ID.Hex()))
	err = f.svc.DeleteCategory(ctx, f.admin, c.ID.Hex())
	assert.Equal(t, inventory.KindNotFound, inventory.KindOf(err))

	_, err = f.svc.UpdateCategory(ctx, f.admin, c.ID.Hex(), inventory.CategoryInput{Name: "x", Description: "y"})
	assert.Equal(t, inventory.KindNotFound, inventory.KindOf(err))
}

func TestCatalogRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, inventory.Options{})

	_, err := f.svc.ListCategories(ctx, f.customer)
	assert.Equal(t, inventory.KindForbidden, inventory.KindOf(err))
	_, err = f.svc.AddCategory(ctx, f.customer, inventory.CategoryInput{Name: "a", Description: "b"})
	assert.Equal(t, inventory.KindForbidden, inventory.KindOf(err))
	_, err = f.svc.ListSuppliers(ctx, f.customer)
	assert.Equal(t, inventory.KindForbidden, inventory.KindOf(err))
	err = f.svc.DeleteSupplier(ctx, f.customer, "5f8f8c44b54764421b7156c9")
	assert.Equal(t, inventory.KindForbidden, inventory.KindOf(err))
	_, err = f.svc.AddProduct(ctx, f.customer, inventory.ProductInput{})
	assert.Equal(t, inventory.KindForbidden, inventory.KindOf(err))
}

func TestSupplierConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, inventory.Options{})

	a, err := f.svc.AddSupplier(ctx, f.admin, inventory.SupplierInput{Name: "Acme", Email: "sales@acme.io", Phone: "1", Address: "x"})
	require.NoError(t, err)
	_, err = f.svc.AddSupplier(ctx, f.admin, inventory.SupplierInput{Name: "Other", Email: "SALES@acme.io", Phone: "2", Address: "y"})
	require.Error(t, err)
	assert.Equal(t, inventory.KindConflict, inventory.KindOf(err))
	assert.Equal(t, "supplier with this name or email already exists", inventory.MessageOf(err))

	b, err := f.svc.AddSupplier(ctx, f.admin, inventory.SupplierInput{Name: "Beta", Email: "hi@beta.io", Phone: "3", Address: "z"})
	require.NoError(t, err)
	_, err = f.svc.UpdateSupplier(ctx, f.admin, b.ID.Hex(), inventory.SupplierInput{Name: "Acme", Email: "hi@beta.io", Phone: "3", Address: "z"})
	assert.Equal(t, inventory.KindConflict, inventory.KindOf(err))

	_, err = f.svc.UpdateSupplier(ctx, f.admin, a.ID.Hex(), inventory.SupplierInput{Name: "Acme Ltd", Email: "sales@acme.io", Phone: "9", Address: "x"})
	assert.NoError(t, err)
}

func TestProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, inventory.Options{})
	p := f.product(t, "Coffee", 5, "3.20")

	require.NotNil(t, p.Category)
	require.NotNil(t, p.Supplier)
	assert.Equal(t, "Coffee category", p.Category.Name)

	list, err := f.svc.ListProducts(ctx, f.customer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, decimal.RequireFromString("3.2").Equal(list[0].Price))

	price := decimal.RequireFromString("4")
	updated, err := f.svc.UpdateProduct(ctx, f.admin, p.ID.Hex(), inventory.ProductInput{
		Name:       "Coffee",
		Stock:      intp(12),
		Price:      &price,
		CategoryID: p.CategoryID.Hex(),
		SupplierID: p.SupplierID.Hex(),
	})
	require.NoError(t, err)
	assert.Equal(t, 12, updated.Stock)

	history, err := f.svc.StockHistory(ctx, f.admin, p.ID.Hex(), 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 7, history[0].Delta)
	assert.Equal(t, models.ReasonAdjustment, history[0].Reason)

	neg := decimal.RequireFromString("-1")
	_, err = f.svc.UpdateProduct(ctx, f.admin, p.ID.Hex(), inventory.ProductInput{
		Name: "Coffee", Stock: intp(1), Price: &neg, CategoryID: p.CategoryID.Hex(), SupplierID: p.SupplierID.Hex(),
	})
	assert.Equal(t, inventory.KindValidation, inventory.KindOf(err))

	_, err = f.svc.UpdateProduct(ctx, f.admin, "5f8f8c44b54764421b7156c9", inventory.ProductInput{
		Name: "Ghost", Stock: intp(1), Price: &price, CategoryID: p.CategoryID.Hex(), SupplierID: p.SupplierID.Hex(),
	})
	assert.Equal(t, inventory.KindNotFound, inventory.KindOf(err))

	zero := decimal.Zero
	_, err = f.svc.AddProduct(ctx, f.admin, inventory.ProductInput{
		Name: "Free sample", Stock: intp(0), Price: &zero, CategoryID: p.CategoryID.Hex(), SupplierID: p.SupplierID.Hex(),
	})
	assert.NoError(t, err, "zero stock and price are valid")
}

func TestAuditHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, inventory.Options{})
	c, err := f.svc.AddCategory(ctx, f.admin, inventory.CategoryInput{Name: "Beverages", Description: "drinks"})
	require.NoError(t, err)
	_, err = f.svc.UpdateCategory(ctx, f.admin, c.ID.Hex(), inventory.CategoryInput{Name: "Drinks", Description: "d"})
	require.NoError(t, err)

	entries, err := f.svc.AuditHistory(ctx, f.admin, c.ID.Hex(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "update_category", entries[0].Action)
	assert.Equal(t, "add_category", entries[1].Action)
	assert.Equal(t, f.admin.UserID.Hex(), entries[0].ActorID)

	_, err = f.svc.AuditHistory(ctx, f.customer, c.ID.Hex(), 0)
	assert.Equal(t, inventory.KindForbidden, inventory.KindOf(err))
}
