package rpc

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"f3-catalog/backend/internal/platform/domainerr"
)

type echoServer interface {
	Echo(ctx context.Context, req *echoRequest) (*echoResponse, error)
}

type echoRequest struct {
	Text string `json:"text"`
}

type echoResponse struct {
	Text string `json:"text"`
}

type echo struct{}

func (echo) Echo(_ context.Context, req *echoRequest) (*echoResponse, error) {
	return &echoResponse{Text: req.Text}, nil
}

func echoDesc() grpc.ServiceDesc {
	return ServiceDesc("EchoService", (*echoServer)(nil),
		Unary("Echo", echoServer.Echo),
	)
}

func TestServiceDesc(t *testing.T) {
	desc := echoDesc()
	require.Equal(t, "f3.catalog.v1.EchoService", desc.ServiceName)
	require.Len(t, desc.Methods, 1)
	require.Equal(t, "Echo", desc.Methods[0].MethodName)
}

func TestUnary_RunsInterceptorWithFullMethod(t *testing.T) {
	desc := echoDesc()
	dec := func(v any) error { return json.Unmarshal([]byte(`{"text":"hi"}`), v) }

	var seen string
	interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		seen = info.FullMethod
		return handler(ctx, req)
	}
	resp, err := desc.Methods[0].Handler(echo{}, context.Background(), dec, interceptor)
	require.NoError(t, err)
	require.Equal(t, "/f3.catalog.v1.EchoService/Echo", seen)
	require.Equal(t, &echoResponse{Text: "hi"}, resp)

	resp, err = desc.Methods[0].Handler(echo{}, context.Background(), dec, nil)
	require.NoError(t, err)
	require.Equal(t, &echoResponse{Text: "hi"}, resp)

	bad := func(any) error { return errors.New("unexpected EOF") }
	_, err = desc.Methods[0].Handler(echo{}, context.Background(), bad, nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"nil", nil, codes.OK},
		{"not found", errors.Wrap(domainerr.NotFound("org", 3), "load"), codes.NotFound},
		{"validation", domainerr.Invalid("name", "is required"), codes.InvalidArgument},
		{"conflict", &domainerr.ConflictError{Entity: "org", ID: "3", Expected: 1}, codes.Aborted},
		{"status passes through", status.Error(codes.PermissionDenied, "no"), codes.PermissionDenied},
		{"deadline", errors.Wrap(context.DeadlineExceeded, "query"), codes.DeadlineExceeded},
		{"other", errors.New("connection refused"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, status.Code(Error(tt.err)))
		})
	}
}
