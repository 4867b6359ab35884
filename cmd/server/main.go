package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/stockdesk/gateway"
	"github.com/example/stockdesk/pkg/audit"
	"github.com/example/stockdesk/pkg/auth"
	"github.com/example/stockdesk/pkg/config"
	"github.com/example/stockdesk/pkg/discovery"
	stockgrpc "github.com/example/stockdesk/pkg/grpc"
	"github.com/example/stockdesk/pkg/inventory"
	"github.com/example/stockdesk/pkg/logging"
	"github.com/example/stockdesk/pkg/payment"
	"github.com/example/stockdesk/pkg/repository"
	"github.com/example/stockdesk/pkg/repository/memstore"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// store is everything the API needs from the document store.
type store interface {
	inventory.UserStore
	inventory.CategoryStore
	inventory.SupplierStore
	inventory.ProductStore
	inventory.OrderStore
	inventory.PaymentStore
	inventory.AuditReader
	audit.Writer
	Ping(ctx context.Context) error
}

func main() {
	configPath := flag.String("config", envOr("STOCKDESK_CONFIG", "config/config.yaml"), "path to the config file")
	flag.Parse()

	// Prices and amounts go out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := logging.New(&cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting stockdesk API",
		zap.String("address", cfg.Server.Addr()),
		zap.String("storage", cfg.Storage.Driver))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		db      store
		closeDB func()
	)
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		db, closeDB = memstore.New(), func() {}
	default:
		mongoRepo, err := repository.NewMongoRepository(&cfg.MongoDB)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			logger.Fatal("Failed to create indexes", zap.Error(err))
		}
		db = mongoRepo
		closeDB = func() {
			cctx, ccancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer ccancel()
			if err := mongoRepo.Close(cctx); err != nil {
				logger.Warn("Failed to close MongoDB", zap.Error(err))
			}
		}
	}
	defer closeDB()

	var sessions gateway.SessionStore
	if cfg.Redis.Addr != "" {
		redisRepo := repository.NewRedisRepository(&cfg.Redis)
		if err := redisRepo.Ping(ctx); err != nil {
			logger.Warn("Redis unavailable, sessions are resolved from storage", zap.Error(err))
		}
		defer redisRepo.Close()
		sessions = redisRepo
	} else {
		sessions = memstore.NewSessions(cfg.Redis.UserTTL)
	}

	var ledger inventory.StockLedger
	var ledgerDB *repository.Ledger
	if cfg.MySQL.Enabled() {
		ledgerDB, err = repository.NewLedger(&cfg.MySQL)
		if err != nil {
			logger.Warn("Stock ledger disabled", zap.Error(err))
		} else {
			defer ledgerDB.Close()
			ledger = ledgerDB
		}
	} else if mem, ok := db.(*memstore.Store); ok {
		ledger = mem
	}

	sink := audit.NewSink(db, logger.Named("audit"))
	defer sink.Close()

	svc := inventory.New(inventory.Deps{
		Users:      db,
		Categories: db,
		Suppliers:  db,
		Products:   db,
		Orders:     db,
		Payments:   db,
		Gateway:    payment.NewClient(&cfg.Payment, logger.Named("payment")),
		Ledger:     ledger,
		Audit:      sink,
		AuditLog:   db,
		Logger:     logger.Named("inventory"),
	}, inventory.Options{
		AllowAdminSignup: cfg.Auth.AllowAdminSignup,
		RequirePayment:   cfg.Payment.RequireForOrders,
		Currency:         cfg.Payment.Currency,
	})

	if err := bootstrapAdmin(ctx, svc, &cfg.Bootstrap, logger); err != nil {
		logger.Fatal("Failed to bootstrap admin", zap.Error(err))
	}

	// Create gateway
	gw := gateway.NewGateway(cfg, logger.Named("http"), svc, auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), sessions)
	gw.AddHealthCheck("storage", db)
	if ledgerDB != nil {
		gw.AddHealthCheck("ledger", ledgerDB)
	}
	gw.SetupRoutes()

	errCh := make(chan error, 2)
	go func() {
		if err := gw.Start(); err != nil {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	var stockSrv *stockgrpc.StockServer
	if cfg.GRPC.Enabled {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr())
		if err != nil {
			logger.Fatal("Failed to listen for gRPC", zap.Error(err))
		}
		stockSrv = stockgrpc.NewStockServer(db, db, logger.Named("grpc"))
		go stockSrv.WatchHealth(ctx, 15*time.Second)
		go func() {
			logger.Info("gRPC stock service listening", zap.String("address", cfg.GRPC.Addr()))
			if err := stockSrv.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc: %w", err)
			}
		}()
	}

	// Setup service discovery
	sd, instances := register(ctx, cfg, logger)

	logger.Info("stockdesk API started")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-errCh:
		logger.Error("Server error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if sd != nil {
		for _, inst := range instances {
			if err := sd.Deregister(shutdownCtx, inst); err != nil {
				logger.Warn("Failed to deregister service", zap.String("service", inst.Name), zap.Error(err))
			}
		}
		sd.Close()
	}
	if err := gw.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	if stockSrv != nil {
		stockSrv.Stop()
	}
	cancel()

	logger.Info("stockdesk API stopped")
}

func bootstrapAdmin(ctx context.Context, svc *inventory.Service, cfg *config.BootstrapConfig, logger *zap.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	created, err := svc.EnsureAdmin(ctx, inventory.UserInput{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Address:  cfg.AdminAddress,
	})
	if err != nil {
		return err
	}
	if created {
		logger.Info("Created bootstrap admin", zap.String("email", cfg.AdminEmail))
	}
	return nil
}

// register announces the HTTP API and, when enabled, the gRPC service in etcd.
// Discovery is optional; failures are logged and the server keeps running.
func register(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*discovery.ServiceDiscovery, []*discovery.ServiceInstance) {
	if len(cfg.Etcd.Endpoints) == 0 {
		return nil, nil
	}
	sd, err := discovery.NewServiceDiscovery(&cfg.Etcd, logger.Named("discovery"))
	if err != nil {
		logger.Warn("Failed to connect to etcd, continuing without service discovery", zap.Error(err))
		return nil, nil
	}

	host := advertiseHost(cfg.Server.Host)
	instances := []*discovery.ServiceInstance{{Name: cfg.Server.Name, Host: host, Port: cfg.Server.Port}}
	if cfg.GRPC.Enabled {
		instances = append(instances, &discovery.ServiceInstance{
			Name: stockgrpc.StockServiceName,
			Host: advertiseHost(cfg.GRPC.Host),
			Port: cfg.GRPC.Port,
		})
	}

	var registered []*discovery.ServiceInstance
	for _, inst := range instances {
		if err := sd.Register(ctx, inst); err != nil {
			logger.Warn("Failed to register service", zap.String("service", inst.Name), zap.Error(err))
			continue
		}
		registered = append(registered, inst)
	}
	return sd, registered
}

func advertiseHost(host string) string {
	if host != "" && host != "0.0.0.0" && host != "::" {
		return host
	}
	if name, err := os.Hostname(); err == nil {
		return name
	}
	return "127.0.0.1"
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
