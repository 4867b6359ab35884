package grpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/example/stockdesk/pkg/discovery"
	"github.com/example/stockdesk/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type productMap map[primitive.ObjectID]models.Product

func (m productMap) ProductByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := m[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

type pingErr struct{ err error }

func (p pingErr) Ping(context.Context) error { return p.err }

type staticResolver []*discovery.ServiceInstance

func (r staticResolver) Discover(context.Context, string) ([]*discovery.ServiceInstance, error) {
	return r, nil
}

func startServer(t *testing.T, products ProductReader, storage Pinger) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewStockServer(products, storage, zap.NewNop())
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	client, err := Dial(context.Background(), staticResolver{}, "stock", "passthrough:///bufnet", zap.NewNop(),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client.conn
}

func TestGetStock(t *testing.T) {
	id := primitive.NewObjectID()
	products := productMap{id: {ID: id, Name: "Tea", Stock: 7, Price: decimal.RequireFromString("2.5")}}
	conn := startServer(t, products, nil)
	client := &StockClient{conn: conn, logger: zap.NewNop()}

	got, err := client.GetStock(context.Background(), id.Hex())
	require.NoError(t, err)
	assert.Equal(t, &StockInfo{ID: id.Hex(), Name: "Tea", Stock: 7, Price: "2.5"}, got)

	_, err = client.GetStock(context.Background(), primitive.NewObjectID().Hex())
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.GetStock(context.Background(), "bogus")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHealthFollowsStorage(t *testing.T) {
	conn := startServer(t, productMap{}, pingErr{err: errors.New("down")})

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: StockServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestDialPrefersDiscoveredInstance(t *testing.T) {
	client, err := Dial(context.Background(), staticResolver{{Name: "stock", Host: "10.1.2.3", Port: 50061}}, "stock", "localhost:1", zap.NewNop())
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, "10.1.2.3:50061", client.conn.Target())
}

func TestDialNeedsAddress(t *testing.T) {
	_, err := Dial(context.Background(), nil, "stock", "", zap.NewNop())
	assert.Error(t, err)
}
