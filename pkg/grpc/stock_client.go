package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/example/stockdesk/pkg/discovery"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Resolver looks up registered instances of a service.
type Resolver interface {
	Discover(ctx context.Context, serviceName string) ([]*discovery.ServiceInstance, error)
}

type StockInfo struct {
	ID    string
	Name  string
	Stock int
	Price string
}

// StockClient queries the stock service of a running API instance.
type StockClient struct {
	conn   *grpc.ClientConn
	logger *zap.Logger
}

// Dial connects to the stock service. When a resolver is given and knows
// an instance of serviceName, that address wins over fallback.
func Dial(ctx context.Context, resolver Resolver, serviceName, fallback string, logger *zap.Logger, opts ...grpc.DialOption) (*StockClient, error) {
	target := fallback

	// Try to use service discovery if available
	if resolver != nil {
		dctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		instances, err := resolver.Discover(dctx, serviceName)
		if err == nil && len(instances) > 0 {
			target = instances[0].Addr()
			logger.Info("Discovered stock service", zap.String("address", target))
		} else {
			logger.Info("Using default address for stock service", zap.String("address", target))
		}
	}
	if target == "" {
		return nil, fmt.Errorf("no address for %s", serviceName)
	}

	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to stock service: %w", err)
	}
	return &StockClient{conn: conn, logger: logger}, nil
}

func (c *StockClient) GetStock(ctx context.Context, productID string) (*StockInfo, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, getStockMethod, wrapperspb.String(productID), out); err != nil {
		return nil, err
	}
	fields := out.GetFields()
	return &StockInfo{
		ID:    fields["id"].GetStringValue(),
		Name:  fields["name"].GetStringValue(),
		Stock: int(fields["stock"].GetNumberValue()),
		Price: fields["price"].GetStringValue(),
	}, nil
}

func (c *StockClient) Close() error {
	return c.conn.Close()
}
