package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

func startBufServer(t *testing.T, gate Authenticator) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())

	s := newTestServer(gate)
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return conn
}

func TestServer_HealthIsPublic(t *testing.T) {
	conn := startBufServer(t, &stubGate{})

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())

	resp, err = grpc_health_v1.NewHealthClient(conn).Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: IdentityServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestServer_WhoAmI(t *testing.T) {
	alice := &models.User{ID: "u1", Name: "Alice", Email: "alice@example.com", Role: models.RoleAdmin, IsEmailVerified: true}
	conn := startBufServer(t, &stubGate{tokens: map[string]*models.User{"good": alice}})

	out := new(structpb.Struct)
	err := conn.Invoke(context.Background(), WhoAmIFullMethod, &emptypb.Empty{}, out)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AuthorizationHeaderName, common.BearerPrefix+"good")
	out = new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, WhoAmIFullMethod, &emptypb.Empty{}, out))

	got := out.AsMap()
	assert.Equal(t, "u1", got["id"])
	assert.Equal(t, "alice@example.com", got["email"])
	assert.Equal(t, "admin", got["role"])
	assert.Equal(t, true, got["isEmailVerified"])
	assert.NotContains(t, got, "passwordHash")
}

func TestServer_RunFailsOnBadAddress(t *testing.T) {
	s := newTestServer(&stubGate{})
	s.address = "bad-address"
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected listen error")
	}
}
