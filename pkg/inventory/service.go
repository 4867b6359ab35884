package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/stockdesk/pkg/auth"
	"github.com/example/stockdesk/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const serviceName = "stockdesk-api"

// PaymentGateway creates checkout orders and checks callback signatures.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*models.GatewayOrder, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
}

type Deps struct {
	Users      UserStore
	Categories CategoryStore
	Suppliers  SupplierStore
	Products   ProductStore
	Orders     OrderStore
	Payments   PaymentStore
	Gateway    PaymentGateway
	Ledger     StockLedger
	Audit      Auditor
	AuditLog   AuditReader
	Logger     *zap.Logger
}

type Options struct {
	AllowAdminSignup bool
	RequirePayment   bool
	Currency         string
}

// Service implements every domain operation of the inventory API.
// It holds no cached entity state; every call goes to the stores.
type Service struct {
	users      UserStore
	categories CategoryStore
	suppliers  SupplierStore
	products   ProductStore
	orders     OrderStore
	payments   PaymentStore
	gateway    PaymentGateway
	ledger     StockLedger
	audit      Auditor
	auditLog   AuditReader
	logger     *zap.Logger
	opts       Options
	now        func() time.Time
}

func New(deps Deps, opts Options) *Service {
	s := &Service{
		users:      deps.Users,
		categories: deps.Categories,
		suppliers:  deps.Suppliers,
		products:   deps.Products,
		orders:     deps.Orders,
		payments:   deps.Payments,
		gateway:    deps.Gateway,
		ledger:     deps.Ledger,
		audit:      deps.Audit,
		auditLog:   deps.AuditLog,
		logger:     deps.Logger,
		opts:       opts,
		now:        time.Now,
	}
	if s.ledger == nil {
		s.ledger = nopLedger{}
	}
	if s.audit == nil {
		s.audit = nopAuditor{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.opts.Currency == "" {
		s.opts.Currency = "INR"
	}
	return s
}

func requireAdmin(who auth.Identity, msg string) error {
	if !who.IsAdmin() {
		return forbidden(msg)
	}
	return nil
}

func parseID(raw, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, validation("invalid " + what + " id")
	}
	return id, nil
}

// blank reports whether any of the values is empty after trimming.
func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func (s *Service) record(who auth.Identity, action string, entityID primitive.ObjectID, data bson.M) {
	s.audit.Record(models.AuditEntry{
		Service:   serviceName,
		Action:    action,
		EntityID:  entityID.Hex(),
		ActorID:   who.UserID.Hex(),
		Data:      data,
		CreatedAt: s.now(),
	})
}

// storeErr translates storage sentinels into domain errors.
func storeErr(err error, what string) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return notFound("no " + what + " found")
	case errors.Is(err, models.ErrDuplicate):
		return conflict("this " + what + " already exists")
	default:
		return internal("failed to access "+what, err)
	}
}

// AuditHistory returns the recorded audit entries of an entity, newest first.
func (s *Service) AuditHistory(ctx context.Context, who auth.Identity, entityID string, limit int64) ([]*models.AuditEntry, error) {
	if err := requireAdmin(who, "only admin can read the audit log"); err != nil {
		return nil, err
	}
	if blank(entityID) {
		return nil, validation("entity id is required")
	}
	if s.auditLog == nil {
		return []*models.AuditEntry{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	logs, err := s.auditLog.GetAuditLogs(ctx, entityID, limit)
	if err != nil {
		return nil, internal("failed to read audit log", err)
	}
	if logs == nil {
		logs = []*models.AuditEntry{}
	}
	return logs, nil
}
