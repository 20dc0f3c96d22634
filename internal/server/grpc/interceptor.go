package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	msgNotLoggedIn  = "You are not logged in"
	msgInvalidToken = "Invalid or expired token"
	msgUserGone     = "The user belonging to this token no longer exists"
)

var publicServicePrefixes = []string{
	"/" + grpc_health_v1.Health_ServiceDesc.ServiceName + "/",
}

func isPublic(fullMethod string) bool {
	for _, p := range publicServicePrefixes {
		if strings.HasPrefix(fullMethod, p) {
			return true
		}
	}
	return false
}

// accessTokenInterceptor applies the auth gate to every non-public unary
// method, reading "authorization: Bearer <token>" from incoming metadata.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if isPublic(info.FullMethod) {
		return handler(ctx, req)
	}

	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
			header = values[0]
		}
	}

	token, err := auth.BearerToken(header)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, msgNotLoggedIn)
	}

	user, err := s.gate.Authenticate(ctx, token)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorUnauthorized):
		return nil, status.Error(codes.Unauthenticated, msgInvalidToken)
	case errors.Is(err, common.ErrorNotFound):
		return nil, status.Error(codes.NotFound, msgUserGone)
	default:
		s.logger.Error(ctx, "authenticate", "method", info.FullMethod, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return handler(auth.ContextWithUser(ctx, user), req)
}
