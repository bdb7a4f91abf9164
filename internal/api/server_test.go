package api

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type switchPinger struct {
	err error
}

func (p *switchPinger) PingContext(context.Context) error { return p.err }

func startBufServer(t *testing.T, db Pinger) (*GRPCServer, healthpb.HealthClient) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	logger := zerolog.Nop()
	srv := newGRPCServer(lis, true, db, &logger)

	go func() { _ = srv.Serve() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return srv, healthpb.NewHealthClient(conn)
}

func TestGRPCHealthServing(t *testing.T) {
	_, client := startBufServer(t, &switchPinger{})
	ctx := context.Background()

	var resp *healthpb.HealthCheckResponse
	require.Eventually(t, func() bool {
		var err error
		resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
		return err == nil
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	_, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "unknown"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGRPCHealthFollowsDatabase(t *testing.T) {
	db := &switchPinger{}
	srv, client := startBufServer(t, db)
	ctx := context.Background()

	db.err = errors.New("database is closed")
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, srv.CheckNow(ctx))

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	db.err = nil
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, srv.CheckNow(ctx))
}

func TestChainUnaryInterceptorsOrder(t *testing.T) {
	var calls []string
	record := func(name string) grpc.UnaryServerInterceptor {
		return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			calls = append(calls, name)
			return handler(ctx, req)
		}
	}

	chain := ChainUnaryInterceptors(record("first"), record("second"))
	resp, err := chain(context.Background(), "req", &grpc.UnaryServerInfo{FullMethod: "/test"}, func(_ context.Context, req any) (any, error) {
		calls = append(calls, "handler")
		return req, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "req", resp)
	assert.Equal(t, []string{"first", "second", "handler"}, calls)
}

func TestRecoveryUnaryInterceptor(t *testing.T) {
	logger := zerolog.Nop()
	interceptor := RecoveryUnaryInterceptor(&logger)

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/test"}, func(context.Context, any) (any, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}
