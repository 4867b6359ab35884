package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/stockdesk/pkg/auth"
	"github.com/example/stockdesk/pkg/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type PlaceOrderInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	// PaymentOrderID is the gateway order id of a verified payment.
	PaymentOrderID string `json:"paymentOrderId"`
}

type ChangeStatusInput struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// PlaceOrder creates a single-line pending order and takes its quantity out
// of stock. The stock decrement is a conditional update, so concurrent
// orders can never drive stock below zero. Steps after the decrement are
// compensated if a later one fails.
func (s *Service) PlaceOrder(ctx context.Context, who auth.Identity, in PlaceOrderInput) (*models.Order, error) {
	if blank(in.ProductID) || in.Quantity == 0 {
		return nil, validation("please fill all the fields")
	}
	if in.Quantity < 1 {
		return nil, validation("quantity must be at least 1")
	}
	paymentRef := strings.TrimSpace(in.PaymentOrderID)
	if paymentRef == "" && s.opts.RequirePayment {
		return nil, validation("a verified payment is required to place an order")
	}
	productID, err := parseID(in.ProductID, "product")
	if err != nil {
		return nil, err
	}

	product, err := s.products.ProductByID(ctx, productID)
	if err != nil {
		return nil, storeErr(err, "product")
	}
	if in.Quantity > product.Stock {
		return nil, insufficientStock(product.Name, in.Quantity, product.Stock)
	}

	orderID := primitive.NewObjectID()

	if paymentRef != "" {
		if err := s.claimPayment(ctx, paymentRef, orderID, product.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))); err != nil {
			return nil, err
		}
	}
	releasePayment := func() {
		if paymentRef == "" {
			return
		}
		if err := s.payments.ReleasePayment(ctx, paymentRef, orderID); err != nil {
			s.logger.Error("Failed to release payment claim",
				zap.String("payment_order_id", paymentRef), zap.String("order_id", orderID.Hex()), zap.Error(err))
		}
	}

	if _, err := s.products.ReserveStock(ctx, productID, in.Quantity); err != nil {
		releasePayment()
		switch {
		case errors.Is(err, models.ErrConditionFailed):
			return nil, insufficientStock(product.Name, in.Quantity, -1)
		case errors.Is(err, models.ErrNotFound):
			return nil, notFound("no product found")
		}
		return nil, internal("failed to reserve stock", err)
	}

	now := s.now()
	order := &models.Order{
		ID:        orderID,
		UserID:    who.UserID,
		Products:  []models.OrderLine{{ProductID: productID, Quantity: in.Quantity}},
		Status:    models.OrderPending,
		PaymentID: paymentRef,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		if relErr := s.products.ReleaseStock(ctx, productID, in.Quantity); relErr != nil {
			s.logger.Error("Failed to compensate stock reservation",
				zap.String("product_id", productID.Hex()), zap.Int("quantity", in.Quantity), zap.Error(relErr))
		}
		releasePayment()
		return nil, internal("error occurred while placing the order", err)
	}

	s.recordMovements(ctx, []models.StockMovement{{
		ProductID: productID.Hex(),
		OrderID:   orderID.Hex(),
		Delta:     -in.Quantity,
		Reason:    models.ReasonOrderPlaced,
	}})
	s.record(who, "place_order", orderID, bson.M{"product": productID.Hex(), "quantity": in.Quantity, "payment": paymentRef})
	s.logger.Info("Order placed",
		zap.String("order_id", orderID.Hex()),
		zap.String("user_id", who.UserID.Hex()),
		zap.String("product_id", productID.Hex()),
		zap.Int("quantity", in.Quantity))
	return order, nil
}

func insufficientStock(product string, requested, available int) error {
	msg := fmt.Sprintf("insufficient stock available for %s", product)
	if available >= 0 {
		msg = fmt.Sprintf("insufficient stock available for %s: requested %d, only %d available", product, requested, available)
	}
	return &Error{Kind: KindInsufficientStock, Message: msg}
}

// claimPayment binds a paid gateway order to the new order. The payment must
// cover the order total and may only ever back one order.
func (s *Service) claimPayment(ctx context.Context, gatewayOrderID string, orderID primitive.ObjectID, total decimal.Decimal) error {
	payment, err := s.payments.PaymentByGatewayOrder(ctx, gatewayOrderID)
	if err != nil {
		return storeErr(err, "payment")
	}
	if payment.Status != models.PaymentPaid {
		return &Error{Kind: KindPaymentVerification, Message: "payment has not been completed"}
	}
	if payment.Amount < MinorUnits(total) {
		return &Error{Kind: KindPaymentVerification, Message: "payment does not cover the order total"}
	}
	if _, err := s.payments.ClaimPayment(ctx, gatewayOrderID, orderID); err != nil {
		if errors.Is(err, models.ErrConditionFailed) {
			return &Error{Kind: KindPaymentVerification, Message: "payment is already linked to an order"}
		}
		return storeErr(err, "payment")
	}
	return nil
}

// ChangeOrderStatus moves an order along its lifecycle. Cancelling returns
// every line item to stock; the status compare-and-set guarantees that
// happens once even when two cancellations race.
func (s *Service) ChangeOrderStatus(ctx context.Context, who auth.Identity, in ChangeStatusInput) (*models.Order, error) {
	if err := requireAdmin(who, "only admin can change order status"); err != nil {
		return nil, err
	}
	if blank(in.OrderID, in.Status) {
		return nil, validation("please fill all the fields")
	}
	id, err := parseID(in.OrderID, "order")
	if err != nil {
		return nil, err
	}
	order, err := s.orders.OrderByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "order")
	}
	next, ok := models.ParseOrderStatus(in.Status)
	if !ok {
		return nil, invalidTransition("invalid status value")
	}

	if order.Status == next {
		return order, nil
	}
	if !order.Status.CanTransition(next) {
		if order.Status == models.OrderCancelled {
			return nil, invalidTransition("cannot change status of a cancelled order")
		}
		return nil, invalidTransition(fmt.Sprintf("cannot change order status from %s to %s", order.Status, next))
	}

	updated, err := s.orders.TransitionOrder(ctx, id, order.Status, next)
	if err != nil {
		if errors.Is(err, models.ErrConditionFailed) {
			return nil, conflict("order was modified concurrently, please retry")
		}
		return nil, storeErr(err, "order")
	}

	if next == models.OrderCancelled {
		if err := s.restoreStock(ctx, updated, models.ReasonOrderCancelled); err != nil {
			return nil, err
		}
	}
	s.record(who, "change_order_status", id, bson.M{"from": string(order.Status), "to": string(next)})
	return updated, nil
}

// DeleteOrder removes an order on behalf of its owner or an admin and puts
// every line item back in stock, whatever status the order had.
func (s *Service) DeleteOrder(ctx context.Context, who auth.Identity, rawID string) error {
	id, err := parseID(rawID, "order")
	if err != nil {
		return err
	}
	order, err := s.orders.OrderByID(ctx, id)
	if err != nil {
		return storeErr(err, "order")
	}
	if !who.IsAdmin() && !who.Owns(order.UserID) {
		return forbidden("you are not authorized to delete this order")
	}

	deleted, err := s.orders.DeleteOrder(ctx, id)
	if err != nil {
		return storeErr(err, "order")
	}
	if err := s.restoreStock(ctx, deleted, models.ReasonOrderDeleted); err != nil {
		return err
	}
	s.record(who, "delete_order", id, bson.M{"status": string(deleted.Status)})
	return nil
}

// restoreStock returns every line item of the order to stock. Products
// that no longer exist are skipped.
func (s *Service) restoreStock(ctx context.Context, order *models.Order, reason string) error {
	var (
		moves  []models.StockMovement
		failed []error
	)
	for _, line := range order.Products {
		err := s.products.ReleaseStock(ctx, line.ProductID, line.Quantity)
		switch {
		case err == nil:
			moves = append(moves, models.StockMovement{
				ProductID: line.ProductID.Hex(),
				OrderID:   order.ID.Hex(),
				Delta:     line.Quantity,
				Reason:    reason,
			})
		case errors.Is(err, models.ErrNotFound):
			s.logger.Warn("Skipping stock restore for missing product",
				zap.String("order_id", order.ID.Hex()), zap.String("product_id", line.ProductID.Hex()))
		default:
			s.logger.Error("Failed to restore stock",
				zap.String("order_id", order.ID.Hex()), zap.String("product_id", line.ProductID.Hex()),
				zap.Int("quantity", line.Quantity), zap.Error(err))
			failed = append(failed, err)
		}
	}
	s.recordMovements(ctx, moves)
	if len(failed) > 0 {
		return internal("failed to restore stock", errors.Join(failed...))
	}
	return nil
}

func (s *Service) AllOrders(ctx context.Context, who auth.Identity) ([]models.OrderDetail, error) {
	if err := requireAdmin(who, "only admin can fetch all orders"); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, internal("failed to fetch orders", err)
	}
	return s.orderDetails(ctx, orders, true)
}

func (s *Service) UserOrders(ctx context.Context, who auth.Identity) ([]models.OrderDetail, error) {
	orders, err := s.orders.ListOrdersByUser(ctx, who.UserID)
	if err != nil {
		return nil, internal("failed to fetch user orders", err)
	}
	return s.orderDetails(ctx, orders, false)
}

func (s *Service) orderDetails(ctx context.Context, orders []models.Order, withUser bool) ([]models.OrderDetail, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, internal("failed to fetch products", err)
	}
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	users := make(map[primitive.ObjectID]*models.User)

	out := make([]models.OrderDetail, 0, len(orders))
	for _, o := range orders {
		d := models.OrderDetail{
			ID:        o.ID,
			Status:    o.Status,
			PaymentID: o.PaymentID,
			CreatedAt: o.CreatedAt,
			UpdatedAt: o.UpdatedAt,
			Products:  make([]models.OrderLineDetail, 0, len(o.Products)),
		}
		for _, line := range o.Products {
			ld := models.OrderLineDetail{Quantity: line.Quantity}
			if p, ok := byID[line.ProductID]; ok {
				ld.Product = &p
			}
			d.Products = append(d.Products, ld)
		}
		if withUser {
			u, seen := users[o.UserID]
			if !seen {
				u, err = s.users.UserByID(ctx, o.UserID)
				if err != nil && !errors.Is(err, models.ErrNotFound) {
					return nil, internal("failed to fetch order owner", err)
				}
				users[o.UserID] = u
			}
			d.User = u
		}
		out = append(out, d)
	}
	return out, nil
}
