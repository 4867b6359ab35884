package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/example/stockdesk/pkg/auth"
	"github.com/example/stockdesk/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SupplierInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (s *Service) AddCategory(ctx context.Context, who auth.Identity, in CategoryInput) (*models.Category, error) {
	if err := requireAdmin(who, "only admin can add category"); err != nil {
		return nil, err
	}
	if blank(in.Name, in.Description) {
		return nil, validation("all fields are required")
	}
	now := s.now()
	c := &models.Category{
		ID:          primitive.NewObjectID(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.categories.CreateCategory(ctx, c); err != nil {
		return nil, storeErr(err, "category")
	}
	s.record(who, "add_category", c.ID, bson.M{"name": c.Name})
	return c, nil
}

func (s *Service) ListCategories(ctx context.Context, who auth.Identity) ([]models.Category, error) {
	if err := requireAdmin(who, "only admin can fetch categories"); err != nil {
		return nil, err
	}
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, internal("failed to fetch categories", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *Service) UpdateCategory(ctx context.Context, who auth.Identity, rawID string, in CategoryInput) (*models.Category, error) {
	if err := requireAdmin(who, "only admin can edit category"); err != nil {
		return nil, err
	}
	if blank(in.Name, in.Description) {
		return nil, validation("fill all the fields to change")
	}
	id, err := parseID(rawID, "category")
	if err != nil {
		return nil, err
	}
	c := &models.Category{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		UpdatedAt:   s.now(),
	}
	if err := s.categories.UpdateCategory(ctx, c); err != nil {
		return nil, storeErr(err, "category")
	}
	s.record(who, "update_category", id, bson.M{"name": c.Name})
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, who auth.Identity, rawID string) error {
	if err := requireAdmin(who, "only admin can delete category"); err != nil {
		return err
	}
	id, err := parseID(rawID, "category")
	if err != nil {
		return err
	}
	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		return storeErr(err, "category")
	}
	s.record(who, "delete_category", id, nil)
	return nil
}

func (s *Service) AddSupplier(ctx context.Context, who auth.Identity, in SupplierInput) (*models.Supplier, error) {
	if err := requireAdmin(who, "only admin can add supplier"); err != nil {
		return nil, err
	}
	if blank(in.Name, in.Email, in.Phone, in.Address) {
		return nil, validation("all fields are required")
	}
	now := s.now()
	sup := &models.Supplier{
		ID:        primitive.NewObjectID(),
		Name:      strings.TrimSpace(in.Name),
		Email:     normalizeEmail(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.suppliers.CreateSupplier(ctx, sup); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, conflict("supplier with this name or email already exists")
		}
		return nil, internal("failed to add supplier", err)
	}
	s.record(who, "add_supplier", sup.ID, bson.M{"name": sup.Name, "email": sup.Email})
	return sup, nil
}

func (s *Service) ListSuppliers(ctx context.Context, who auth.Identity) ([]models.Supplier, error) {
	if err := requireAdmin(who, "only admin can fetch all suppliers"); err != nil {
		return nil, err
	}
	suppliers, err := s.suppliers.ListSuppliers(ctx)
	if err != nil {
		return nil, internal("failed to fetch suppliers", err)
	}
	if suppliers == nil {
		suppliers = []models.Supplier{}
	}
	return suppliers, nil
}

func (s *Service) UpdateSupplier(ctx context.Context, who auth.Identity, rawID string, in SupplierInput) (*models.Supplier, error) {
	if err := requireAdmin(who, "only admin can update supplier"); err != nil {
		return nil, err
	}
	if blank(in.Name, in.Email, in.Phone, in.Address) {
		return nil, validation("all fields are required")
	}
	id, err := parseID(rawID, "supplier")
	if err != nil {
		return nil, err
	}
	sup := &models.Supplier{
		ID:        id,
		Name:      strings.TrimSpace(in.Name),
		Email:     normalizeEmail(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		UpdatedAt: s.now(),
	}
	if err := s.suppliers.UpdateSupplier(ctx, sup); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, conflict("supplier with this name or email already exists")
		}
		return nil, storeErr(err, "supplier")
	}
	s.record(who, "update_supplier", id, bson.M{"name": sup.Name})
	return sup, nil
}

func (s *Service) DeleteSupplier(ctx context.Context, who auth.Identity, rawID string) error {
	if err := requireAdmin(who, "only admin can delete supplier"); err != nil {
		return err
	}
	id, err := parseID(rawID, "supplier")
	if err != nil {
		return err
	}
	if err := s.suppliers.DeleteSupplier(ctx, id); err != nil {
		return storeErr(err, "supplier")
	}
	s.record(who, "delete_supplier", id, nil)
	return nil
}
