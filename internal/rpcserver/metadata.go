package rpcserver

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

// RequestIDHeader is the gRPC metadata key for request correlation IDs.
const RequestIDHeader = "x-request-id"

// LocaleHeader is the gRPC metadata key selecting the language of error
// messages and formatted values.
const LocaleHeader = "x-locale"

type contextKey string

const requestIDContextKey contextKey = "combicalc-request-id"

// RequestIDFromContext returns the request ID stored in context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDContextKey).(string)
	return value
}

// WithRequestID stores the request ID in context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// isPrintableASCII reports whether value is non-empty printable ASCII.
func isPrintableASCII(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < 0x20 || value[i] > 0x7e {
			return false
		}
	}
	return true
}

// firstMetadataValue returns the first printable ASCII value for key.
// Control characters are dropped so header values are safe to log.
func firstMetadataValue(md metadata.MD, key string) string {
	for mdKey, values := range md {
		if !strings.EqualFold(mdKey, key) {
			continue
		}
		for _, value := range values {
			if isPrintableASCII(value) {
				return value
			}
		}
	}
	return ""
}

func incomingValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	return firstMetadataValue(md, key)
}
