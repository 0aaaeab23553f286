package auth

import (
	"context"

	"google.golang.org/grpc"
)

// ContextInterceptor copies the bearer credential of incoming metadata into
// the request context so downstream catalog calls can forward it.
func ContextInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if token := BearerToken(ctx); token != "" {
			ctx = WithBearerToken(ctx, token)
		}
		return handler(ctx, req)
	}
}
