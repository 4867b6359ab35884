package grpc

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/example/stockdesk/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	StockServiceName = "stockdesk.v1.StockService"
	getStockMethod   = "/" + StockServiceName + "/GetStock"
)

// ProductReader is the read side of the product store.
type ProductReader interface {
	ProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type StockServiceServer interface {
	GetStock(ctx context.Context, productID *wrapperspb.StringValue) (*structpb.Struct, error)
}

// StockServiceDesc describes the internal stock query service. Requests and
// responses are well-known protobuf types, so no generated code is needed.
var StockServiceDesc = grpc.ServiceDesc{
	ServiceName: StockServiceName,
	HandlerType: (*StockServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetStock", Handler: getStockHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stockdesk/v1/stock.proto",
}

func getStockHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StockServiceServer).GetStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getStockMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StockServiceServer).GetStock(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

type StockServer struct {
	products ProductReader
	storage  Pinger
	health   *health.Server
	srv      *grpc.Server
	logger   *zap.Logger
}

func NewStockServer(products ProductReader, storage Pinger, logger *zap.Logger) *StockServer {
	s := &StockServer{
		products: products,
		storage:  storage,
		health:   health.NewServer(),
		logger:   logger,
	}
	s.srv = grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(logger)))
	s.srv.RegisterService(&StockServiceDesc, s)
	healthpb.RegisterHealthServer(s.srv, s.health)
	reflection.Register(s.srv)
	return s
}

func (s *StockServer) GetStock(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := primitive.ObjectIDFromHex(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid product id")
	}
	p, err := s.products.ProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "product not found")
		}
		s.logger.Error("Failed to get product", zap.String("product_id", req.GetValue()), zap.Error(err))
		return nil, status.Error(codes.Internal, "failed to get product")
	}

	resp, err := structpb.NewStruct(map[string]interface{}{
		"id":    p.ID.Hex(),
		"name":  p.Name,
		"stock": p.Stock,
		"price": p.Price.String(),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode product")
	}
	return resp, nil
}

// Serve blocks until the listener fails or Stop is called.
func (s *StockServer) Serve(lis net.Listener) error {
	s.refreshHealth(context.Background())
	s.logger.Info("Stock service started", zap.String("address", lis.Addr().String()))
	return s.srv.Serve(lis)
}

// WatchHealth re-checks storage every interval until ctx is done.
func (s *StockServer) WatchHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshHealth(ctx)
		}
	}
}

func (s *StockServer) refreshHealth(ctx context.Context) {
	st := healthpb.HealthCheckResponse_SERVING
	if s.storage != nil {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.storage.Ping(pctx); err != nil {
			s.logger.Warn("Storage ping failed", zap.Error(err))
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(StockServiceName, st)
}

func (s *StockServer) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}

func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("gRPC request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)),
		)
		return resp, err
	}
}
