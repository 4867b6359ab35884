package memstore

import (
	"context"

	"github.com/example/stockdesk/pkg/models"
)

// Record appends stock movements, assigning sequential ids.
func (s *Store) Record(_ context.Context, moves []models.StockMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range moves {
		m.ID = uint(len(s.movements) + 1)
		if m.CreatedAt.IsZero() {
			m.CreatedAt = s.now()
		}
		s.movements = append(s.movements, m)
	}
	return nil
}

// History returns the newest movements of a product first.
func (s *Store) History(_ context.Context, productID string, limit int) ([]models.StockMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.StockMovement, 0)
	for i := len(s.movements) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if s.movements[i].ProductID == productID {
			out = append(out, s.movements[i])
		}
	}
	return out, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry *models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	s.audit = append(s.audit, *entry)
	return nil
}

func (s *Store) GetAuditLogs(_ context.Context, entityID string, limit int64) ([]*models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.AuditEntry, 0)
	for i := len(s.audit) - 1; i >= 0 && (limit <= 0 || int64(len(out)) < limit); i-- {
		if s.audit[i].EntityID == entityID {
			e := s.audit[i]
			out = append(out, &e)
		}
	}
	return out, nil
}
