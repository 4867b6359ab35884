package inventory

import (
	"context"
	"strings"

	"github.com/example/stockdesk/pkg/auth"
	"github.com/example/stockdesk/pkg/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProductInput uses pointers so that a zero stock or price can be told
// apart from a missing field.
type ProductInput struct {
	Name       string           `json:"name"`
	Stock      *int             `json:"stock"`
	Price      *decimal.Decimal `json:"price"`
	CategoryID string           `json:"categoryId"`
	SupplierID string           `json:"supplierId"`
}

func (in ProductInput) product(id primitive.ObjectID) (*models.Product, error) {
	if blank(in.Name, in.CategoryID, in.SupplierID) || in.Stock == nil || in.Price == nil {
		return nil, validation("fill all the fields")
	}
	if *in.Stock < 0 {
		return nil, validation("stock cannot be negative")
	}
	if in.Price.IsNegative() {
		return nil, validation("price cannot be negative")
	}
	categoryID, err := parseID(in.CategoryID, "category")
	if err != nil {
		return nil, err
	}
	supplierID, err := parseID(in.SupplierID, "supplier")
	if err != nil {
		return nil, err
	}
	return &models.Product{
		ID:         id,
		Name:       strings.TrimSpace(in.Name),
		Stock:      *in.Stock,
		Price:      *in.Price,
		CategoryID: categoryID,
		SupplierID: supplierID,
	}, nil
}

func (s *Service) AddProduct(ctx context.Context, who auth.Identity, in ProductInput) (*models.ProductDetail, error) {
	if err := requireAdmin(who, "only admin can add product"); err != nil {
		return nil, err
	}
	p, err := in.product(primitive.NewObjectID())
	if err != nil {
		return nil, err
	}
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	if err := s.products.CreateProduct(ctx, p); err != nil {
		return nil, storeErr(err, "product")
	}

	if p.Stock > 0 {
		s.recordMovements(ctx, []models.StockMovement{{
			ProductID: p.ID.Hex(),
			Delta:     p.Stock,
			Reason:    models.ReasonAdjustment,
		}})
	}
	s.record(who, "add_product", p.ID, bson.M{"name": p.Name, "stock": p.Stock, "price": p.Price.String()})
	return s.productDetail(ctx, p), nil
}

// ListProducts is open to every signed-in caller; customers browse it.
func (s *Service) ListProducts(ctx context.Context, _ auth.Identity) ([]models.ProductDetail, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, internal("failed to fetch products", err)
	}
	categories, suppliers, err := s.catalogIndex(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ProductDetail, 0, len(products))
	for _, p := range products {
		out = append(out, joinProduct(p, categories, suppliers))
	}
	return out, nil
}

func (s *Service) UpdateProduct(ctx context.Context, who auth.Identity, rawID string, in ProductInput) (*models.ProductDetail, error) {
	if err := requireAdmin(who, "only admin can update product"); err != nil {
		return nil, err
	}
	id, err := parseID(rawID, "product")
	if err != nil {
		return nil, err
	}
	p, err := in.product(id)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now()
	prev, err := s.products.UpdateProduct(ctx, p)
	if err != nil {
		return nil, storeErr(err, "product")
	}

	if delta := p.Stock - prev.Stock; delta != 0 {
		s.recordMovements(ctx, []models.StockMovement{{
			ProductID: id.Hex(),
			Delta:     delta,
			Reason:    models.ReasonAdjustment,
		}})
	}
	s.record(who, "update_product", id, bson.M{"name": p.Name, "stock": p.Stock, "price": p.Price.String()})
	return s.productDetail(ctx, p), nil
}

func (s *Service) DeleteProduct(ctx context.Context, who auth.Identity, rawID string) error {
	if err := requireAdmin(who, "only admin can delete product"); err != nil {
		return err
	}
	id, err := parseID(rawID, "product")
	if err != nil {
		return err
	}
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return storeErr(err, "product")
	}
	s.record(who, "delete_product", id, nil)
	return nil
}

// StockHistory returns the newest ledger entries of a product.
func (s *Service) StockHistory(ctx context.Context, who auth.Identity, rawID string, limit int) ([]models.StockMovement, error) {
	if err := requireAdmin(who, "only admin can read stock history"); err != nil {
		return nil, err
	}
	id, err := parseID(rawID, "product")
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	moves, err := s.ledger.History(ctx, id.Hex(), limit)
	if err != nil {
		return nil, internal("failed to read stock history", err)
	}
	return moves, nil
}

func (s *Service) catalogIndex(ctx context.Context) (map[primitive.ObjectID]models.Category, map[primitive.ObjectID]models.Supplier, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, nil, internal("failed to fetch categories", err)
	}
	suppliers, err := s.suppliers.ListSuppliers(ctx)
	if err != nil {
		return nil, nil, internal("failed to fetch suppliers", err)
	}
	byCategory := make(map[primitive.ObjectID]models.Category, len(categories))
	for _, c := range categories {
		byCategory[c.ID] = c
	}
	bySupplier := make(map[primitive.ObjectID]models.Supplier, len(suppliers))
	for _, sup := range suppliers {
		bySupplier[sup.ID] = sup
	}
	return byCategory, bySupplier, nil
}

func joinProduct(p models.Product, categories map[primitive.ObjectID]models.Category, suppliers map[primitive.ObjectID]models.Supplier) models.ProductDetail {
	d := models.ProductDetail{Product: p}
	if c, ok := categories[p.CategoryID]; ok {
		d.Category = &c
	}
	if sup, ok := suppliers[p.SupplierID]; ok {
		d.Supplier = &sup
	}
	return d
}

// productDetail joins a single product. A failed lookup only drops the join.
func (s *Service) productDetail(ctx context.Context, p *models.Product) *models.ProductDetail {
	categories, suppliers, err := s.catalogIndex(ctx)
	if err != nil {
		s.logger.Warn("Failed to join product references", zap.String("product_id", p.ID.Hex()), zap.Error(err))
		return &models.ProductDetail{Product: *p}
	}
	d := joinProduct(*p, categories, suppliers)
	return &d
}

func (s *Service) recordMovements(ctx context.Context, moves []models.StockMovement) {
	if len(moves) == 0 {
		return
	}
	now := s.now()
	for i := range moves {
		if moves[i].CreatedAt.IsZero() {
			moves[i].CreatedAt = now
		}
	}
	if err := s.ledger.Record(ctx, moves); err != nil {
		s.logger.Error("Failed to record stock movements", zap.Int("count", len(moves)), zap.Error(err))
	}
}
