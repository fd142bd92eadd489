package interceptors

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"f3-catalog/backend/internal/platform/logger"
)

func observedLogger() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &logger.Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestLoggingUnary(t *testing.T) {
	log, logs := observedLogger()
	interceptor := LoggingUnary(log)
	info := &grpc.UnaryServerInfo{FullMethod: "/f3.catalog.v1.OrgService/GetOrg"}

	var seenID string
	ok := func(ctx context.Context, req any) (any, error) {
		seenID = GetRequestID(ctx)
		return "success", nil
	}
	ctx := metadata.NewIncomingContext(WithUserID(context.Background(), 42), metadata.Pairs("x-request-id", "r-7"))
	if _, err := interceptor(ctx, "request", info, ok); err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if seenID != "r-7" {
		t.Errorf("request id = %q, want incoming r-7", seenID)
	}

	failing := func(context.Context, any) (any, error) { return nil, status.Error(codes.Internal, "boom") }
	if _, err := interceptor(context.Background(), "request", info, failing); status.Code(err) != codes.Internal {
		t.Fatalf("error = %v", err)
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("log entries = %d, want 2", len(entries))
	}
	first := entries[0].ContextMap()
	if entries[0].Level != zap.InfoLevel || first["code"] != "OK" || first["user_id"] != int64(42) {
		t.Errorf("unexpected first entry %v %v", entries[0].Level, first)
	}
	second := entries[1].ContextMap()
	if entries[1].Level != zap.ErrorLevel || second["code"] != "Internal" || second["request_id"] == "" {
		t.Errorf("unexpected second entry %v %v", entries[1].Level, second)
	}
}
