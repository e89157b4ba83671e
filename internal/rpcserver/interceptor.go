package rpcserver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UnaryServerInterceptor gives every unary call a request ID and logs its
// outcome. An incoming x-request-id is kept; otherwise newID generates one.
// The ID is echoed back in the response header.
//
// Precondition: logger must be non-nil. A nil newID selects uuid.NewString.
func UnaryServerInterceptor(logger *zap.Logger, newID func() string) grpc.UnaryServerInterceptor {
	if newID == nil {
		newID = uuid.NewString
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		requestID := incomingValue(ctx, RequestIDHeader)
		if requestID == "" {
			requestID = newID()
		}
		ctx = WithRequestID(ctx, requestID)
		if err := grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID)); err != nil {
			return nil, status.Errorf(codes.Internal, "set response metadata: %v", err)
		}

		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("request_id", requestID),
			zap.Stringer("code", code),
			zap.Duration("duration", time.Since(start)),
		}
		switch code {
		case codes.OK, codes.InvalidArgument, codes.NotFound:
			logger.Info("rpc completed", fields...)
		default:
			logger.Warn("rpc failed", append(fields, zap.Error(err))...)
		}
		return resp, err
	}
}
