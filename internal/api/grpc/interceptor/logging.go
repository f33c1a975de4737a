package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"clubhub-backend/internal/logger"
)

// Logging returns a unary interceptor that logs every RPC with its status
// code and duration.
func Logging() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		args := []any{"method", info.FullMethod, "code", code.String(), "duration_ms", time.Since(start).Milliseconds()}
		if err != nil {
			logger.Warn("grpc request failed", append(args, "error", err)...)
		} else {
			logger.Debug("grpc request", args...)
		}
		return resp, err
	}
}
