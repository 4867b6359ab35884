package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	_ "github.com/example/stockdesk/docs"
	"github.com/example/stockdesk/pkg/auth"
	"github.com/example/stockdesk/pkg/config"
	"github.com/example/stockdesk/pkg/inventory"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// SessionStore caches resolved identities and remembers revoked tokens.
type SessionStore interface {
	CacheUser(ctx context.Context, who auth.Identity) error
	GetUserCache(ctx context.Context, userID string) (*auth.Identity, error)
	InvalidateUser(ctx context.Context, userID string) error
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Pinger is a dependency reported by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Gateway struct {
	config   *config.Config
	svc      *inventory.Service
	tokens   *auth.TokenIssuer
	sessions SessionStore
	checks   map[string]Pinger
	logger   *zap.Logger
	router   *gin.Engine
	server   *http.Server
}

func NewGateway(cfg *config.Config, logger *zap.Logger, svc *inventory.Service, tokens *auth.TokenIssuer, sessions SessionStore) *Gateway {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(logger))
	if len(cfg.CORS.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	return &Gateway{
		config:   cfg,
		svc:      svc,
		tokens:   tokens,
		sessions: sessions,
		checks:   make(map[string]Pinger),
		logger:   logger,
		router:   router,
	}
}

// AddHealthCheck registers a dependency reported by /health.
func (g *Gateway) AddHealthCheck(name string, p Pinger) {
	g.checks[name] = p
}

// SetupRoutes registers the API.
//
// @title stockdesk API
// @version 1.0
// @description Inventory management: users, catalog, products, orders and payments.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func (g *Gateway) SetupRoutes() {
	// Health check
	g.router.GET("/health", g.health)

	// Swagger documentation
	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := g.router.Group("/api")

	users := api.Group("/users")
	{
		users.POST("/register", g.register)
		users.POST("/login", g.login)
		users.POST("/logout", g.logout)
		users.GET("/getAllUsers", g.authed(g.getAllUsers))
		users.DELETE("/deleteUser/:id", g.authed(g.deleteUser))
		users.PATCH("/updateProfile", g.authed(g.updateProfile))
		users.POST("/adduser", g.authed(g.addUser))
	}

	category := api.Group("/category")
	{
		category.POST("/addCategory", g.authed(g.addCategory))
		category.GET("/getAllCategories", g.authed(g.getAllCategories))
		category.PATCH("/updateCategory/:id", g.authed(g.updateCategory))
		category.DELETE("/deleteCategory/:id", g.authed(g.deleteCategory))
	}

	supplier := api.Group("/supplier")
	{
		supplier.POST("/addSupplier", g.authed(g.addSupplier))
		supplier.GET("/getAllSuppliers", g.authed(g.getAllSuppliers))
		supplier.PATCH("/updateSupplier/:id", g.authed(g.updateSupplier))
		supplier.DELETE("/deleteSupplier/:id", g.authed(g.deleteSupplier))
	}

	product := api.Group("/product")
	{
		product.POST("/addProduct", g.authed(g.addProduct))
		product.GET("/getAllProducts", g.authed(g.getAllProducts))
		product.PATCH("/updateProduct/:id", g.authed(g.updateProduct))
		product.DELETE("/deleteProduct/:id", g.authed(g.deleteProduct))
		product.GET("/stockHistory/:id", g.authed(g.stockHistory))
	}

	order := api.Group("/order")
	{
		order.POST("/placeOrder", g.authed(g.placeOrder))
		order.PATCH("/changeOrderStatus", g.authed(g.changeOrderStatus))
		order.GET("/getAllOrders", g.authed(g.getAllOrders))
		order.GET("/getUserOrders", g.authed(g.getUserOrders))
		order.DELETE("/deleteOrder/:id", g.authed(g.deleteOrder))
	}

	api.GET("/frontend/me", g.authed(g.me))

	payment := api.Group("/payment")
	{
		payment.POST("/create-order", g.authed(g.createPaymentOrder))
		payment.POST("/verify-payment", g.authed(g.verifyPayment))
	}

	api.GET("/audit/:entityId", g.authed(g.auditHistory))
}

// Handler exposes the router, mainly for tests.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

// Start serves HTTP until Shutdown is called.
func (g *Gateway) Start() error {
	addr := g.config.Server.Addr()
	g.server = &http.Server{
		Addr:              addr,
		Handler:           g.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.logger.Info("Gateway starting", zap.String("address", addr))
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}

func (g *Gateway) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}
	for name, p := range g.checks {
		if err := p.Ping(ctx); err != nil {
			g.logger.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			deps[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}
	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "dependencies": deps})
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}
