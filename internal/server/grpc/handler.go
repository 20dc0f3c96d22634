package grpc

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// WhoAmI returns the public projection of the authenticated caller.
func (s *GRPCServer) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, msgNotLoggedIn)
	}

	out, err := structpb.NewStruct(map[string]any{
		"id":              user.ID,
		"name":            user.Name,
		"email":           user.Email,
		"role":            user.Role.String(),
		"isEmailVerified": user.IsEmailVerified,
	})
	if err != nil {
		s.logger.Error(ctx, "encode identity", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}
