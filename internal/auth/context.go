package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

type bearerKey struct{}

// WithBearerToken attaches the credential used for mutating catalog calls.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

// BearerToken returns the token stored by WithBearerToken, falling back to
// the authorization header of incoming gRPC metadata.
func BearerToken(ctx context.Context) string {
	if val, ok := ctx.Value(bearerKey{}).(string); ok && val != "" {
		return val
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if val := md.Get("authorization"); len(val) > 0 {
			token, found := strings.CutPrefix(val[0], "Bearer ")
			if !found {
				token, _ = strings.CutPrefix(val[0], "bearer ")
			}
			return strings.TrimSpace(token)
		}
	}
	return ""
}
