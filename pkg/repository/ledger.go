package repository

import (
	"context"
	"fmt"

	"github.com/example/stockdesk/pkg/config"
	"github.com/example/stockdesk/pkg/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Ledger is the append-only stock movement table in MySQL.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(cfg *config.MySQLConfig) (*Ledger, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	return newLedger(db, cfg)
}

func newLedger(db *gorm.DB, cfg *config.MySQLConfig) (*Ledger, error) {
	if sqlDB, err := db.DB(); err == nil && cfg != nil {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	// Auto migrate
	if err := db.AutoMigrate(&models.StockMovement{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Record(ctx context.Context, moves []models.StockMovement) error {
	if len(moves) == 0 {
		return nil
	}
	return l.db.WithContext(ctx).Create(&moves).Error
}

func (l *Ledger) historyQuery(ctx context.Context, productID string, limit int) *gorm.DB {
	return l.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit)
}

// History returns the newest movements of a product first.
func (l *Ledger) History(ctx context.Context, productID string, limit int) ([]models.StockMovement, error) {
	moves := make([]models.StockMovement, 0)
	if err := l.historyQuery(ctx, productID, limit).Find(&moves).Error; err != nil {
		return nil, err
	}
	return moves, nil
}

func (l *Ledger) Ping(ctx context.Context) error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
