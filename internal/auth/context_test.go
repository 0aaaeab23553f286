package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{"empty", context.Background(), ""},
		{"context value", WithBearerToken(context.Background(), "abc"), "abc"},
		{"metadata", metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer xyz")), "xyz"},
		{"metadata lower case scheme", metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "bearer xyz")), "xyz"},
		{
			"context wins over metadata",
			WithBearerToken(metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer xyz")), "abc"),
			"abc",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BearerToken(tt.ctx))
		})
	}
}

func TestContextInterceptor(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer xyz"))

	var seen string
	_, err := ContextInterceptor()(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/test"}, func(ctx context.Context, req any) (any, error) {
		seen, _ = ctx.Value(bearerKey{}).(string)
		return nil, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "xyz", seen)
}
