// Package memstore keeps every collection in process memory. It enforces the
// same unique keys and conditional updates as the Mongo repository and backs
// local runs and tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/stockdesk/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu         sync.RWMutex
	users      map[primitive.ObjectID]models.User
	categories map[primitive.ObjectID]models.Category
	suppliers  map[primitive.ObjectID]models.Supplier
	products   map[primitive.ObjectID]models.Product
	orders     map[primitive.ObjectID]models.Order
	payments   map[string]models.Payment
	movements  []models.StockMovement
	audit      []models.AuditEntry
	now        func() time.Time
}

func New() *Store {
	return &Store{
		users:      make(map[primitive.ObjectID]models.User),
		categories: make(map[primitive.ObjectID]models.Category),
		suppliers:  make(map[primitive.ObjectID]models.Supplier),
		products:   make(map[primitive.ObjectID]models.Product),
		orders:     make(map[primitive.ObjectID]models.Order),
		payments:   make(map[string]models.Payment),
		now:        time.Now,
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func ensureID(id *primitive.ObjectID) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
}

func sameKey(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Users

func (s *Store) emailTaken(email string, except primitive.ObjectID) bool {
	for id, u := range s.users {
		if id != except && sameKey(u.Email, email) {
			return true
		}
	}
	return false
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(u.Email, primitive.NilObjectID) {
		return models.ErrDuplicate
	}
	ensureID(&u.ID)
	s.users[u.ID] = *u
	return nil
}

func (s *Store) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if sameKey(u.Email, email) {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Store) ListUsersExcept(_ context.Context, id primitive.ObjectID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for uid, u := range s.users {
		if uid != id {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateProfile(_ context.Context, id primitive.ObjectID, p models.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if s.emailTaken(p.Email, id) {
		return nil, models.ErrDuplicate
	}
	u.Name, u.Email, u.Address = p.Name, p.Email, p.Address
	u.UpdatedAt = s.now()
	s.users[id] = u
	return &u, nil
}

func (s *Store) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// Categories

func (s *Store) categoryTaken(name string, except primitive.ObjectID) bool {
	for id, c := range s.categories {
		if id != except && sameKey(c.Name, name) {
			return true
		}
	}
	return false
}

func (s *Store) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.categoryTaken(c.Name, primitive.NilObjectID) {
		return models.ErrDuplicate
	}
	ensureID(&c.ID)
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) ListCategories(context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.categories[c.ID]
	if !ok {
		return models.ErrNotFound
	}
	if s.categoryTaken(c.Name, c.ID) {
		return models.ErrDuplicate
	}
	c.CreatedAt = prev.CreatedAt
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

// Suppliers

func (s *Store) supplierTaken(sup *models.Supplier) bool {
	for id, other := range s.suppliers {
		if id != sup.ID && (sameKey(other.Name, sup.Name) || sameKey(other.Email, sup.Email)) {
			return true
		}
	}
	return false
}

func (s *Store) CreateSupplier(_ context.Context, sup *models.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensureID(&sup.ID)
	if s.supplierTaken(sup) {
		return models.ErrDuplicate
	}
	s.suppliers[sup.ID] = *sup
	return nil
}

func (s *Store) ListSuppliers(context.Context) ([]models.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Supplier, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		out = append(out, sup)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateSupplier(_ context.Context, sup *models.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.suppliers[sup.ID]
	if !ok {
		return models.ErrNotFound
	}
	if s.supplierTaken(sup) {
		return models.ErrDuplicate
	}
	sup.CreatedAt = prev.CreatedAt
	s.suppliers[sup.ID] = *sup
	return nil
}

func (s *Store) DeleteSupplier(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.suppliers[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.suppliers, id)
	return nil
}

// Products

func (s *Store) productTaken(name string, except primitive.ObjectID) bool {
	for id, p := range s.products {
		if id != except && sameKey(p.Name, name) {
			return true
		}
	}
	return false
}

func (s *Store) CreateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.productTaken(p.Name, primitive.NilObjectID) {
		return models.ErrDuplicate
	}
	ensureID(&p.ID)
	s.products[p.ID] = *p
	return nil
}

func (s *Store) ProductByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ListProducts(context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateProduct(_ context.Context, p *models.Product) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.products[p.ID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if s.productTaken(p.Name, p.ID) {
		return nil, models.ErrDuplicate
	}
	p.CreatedAt = prev.CreatedAt
	s.products[p.ID] = *p
	return &prev, nil
}

func (s *Store) DeleteProduct(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) ReserveStock(_ context.Context, id primitive.ObjectID, qty int) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if p.Stock < qty {
		return nil, models.ErrConditionFailed
	}
	p.Stock -= qty
	p.UpdatedAt = s.now()
	s.products[id] = p
	return &p, nil
}

func (s *Store) ReleaseStock(_ context.Context, id primitive.ObjectID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return models.ErrNotFound
	}
	p.Stock += qty
	p.UpdatedAt = s.now()
	s.products[id] = p
	return nil
}

// Orders

func copyOrder(o models.Order) *models.Order {
	o.Products = append([]models.OrderLine(nil), o.Products...)
	return &o
}

func (s *Store) CreateOrder(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensureID(&o.ID)
	if _, ok := s.orders[o.ID]; ok {
		return models.ErrDuplicate
	}
	s.orders[o.ID] = *copyOrder(*o)
	return nil
}

func (s *Store) OrderByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyOrder(o), nil
}

func (s *Store) listOrders(keep func(models.Order) bool) []models.Order {
	out := make([]models.Order, 0)
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, *copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Store) ListOrders(context.Context) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listOrders(func(models.Order) bool { return true }), nil
}

func (s *Store) ListOrdersByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listOrders(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (s *Store) TransitionOrder(_ context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if o.Status != from {
		return nil, models.ErrConditionFailed
	}
	o.Status = to
	o.UpdatedAt = s.now()
	s.orders[id] = o
	return copyOrder(o), nil
}

func (s *Store) DeleteOrder(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	delete(s.orders, id)
	return copyOrder(o), nil
}

// Payments

func (s *Store) CreatePayment(_ context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[p.GatewayOrderID]; ok {
		return models.ErrDuplicate
	}
	ensureID(&p.ID)
	s.payments[p.GatewayOrderID] = *p
	return nil
}

func (s *Store) PaymentByGatewayOrder(_ context.Context, gatewayOrderID string) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[gatewayOrderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (s *Store) MarkPaymentPaid(_ context.Context, gatewayOrderID, paymentID, signature string) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[gatewayOrderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	p.GatewayPaymentID = paymentID
	p.Signature = signature
	p.Status = models.PaymentPaid
	p.UpdatedAt = s.now()
	s.payments[gatewayOrderID] = p
	return &p, nil
}

func (s *Store) ClaimPayment(_ context.Context, gatewayOrderID string, orderID primitive.ObjectID) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[gatewayOrderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if p.Status != models.PaymentPaid || !p.OrderRef.IsZero() {
		return nil, models.ErrConditionFailed
	}
	p.OrderRef = orderID
	p.UpdatedAt = s.now()
	s.payments[gatewayOrderID] = p
	return &p, nil
}

func (s *Store) ReleasePayment(_ context.Context, gatewayOrderID string, orderID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[gatewayOrderID]
	if !ok || p.OrderRef != orderID {
		return models.ErrNotFound
	}
	p.OrderRef = primitive.NilObjectID
	p.UpdatedAt = s.now()
	s.payments[gatewayOrderID] = p
	return nil
}
