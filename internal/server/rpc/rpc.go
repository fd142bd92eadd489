// Package rpc builds hand-written gRPC service descriptors over plain request/response structs (the
// wire format is the json codec) and maps domain errors to gRPC status codes.
package rpc

import (
	"context"

	"github.com/go-faster/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"f3-catalog/backend/internal/platform/domainerr"
)

// Package is the gRPC package shared by every catalog service.
const Package = "f3.catalog.v1"

// Method builds the descriptor of one method of service.
type Method func(service string) grpc.MethodDesc

// Unary describes a unary method whose server implementation is S.
func Unary[S, Req, Resp any](name string, call func(srv S, ctx context.Context, req *Req) (*Resp, error)) Method {
	return func(service string) grpc.MethodDesc {
		fullMethod := FullMethod(service, name)
		return grpc.MethodDesc{
			MethodName: name,
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(Req)
				if err := dec(in); err != nil {
					return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
				}
				if interceptor == nil {
					return call(srv.(S), ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
				return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
					return call(srv.(S), ctx, req.(*Req))
				})
			},
		}
	}
}

// ServiceDesc assembles a descriptor for the service Package.<name>. handlerType is a nil pointer to
// the server interface.
func ServiceDesc(name string, handlerType any, methods ...Method) grpc.ServiceDesc {
	service := Package + "." + name
	desc := grpc.ServiceDesc{
		ServiceName: service,
		HandlerType: handlerType,
		Streams:     []grpc.StreamDesc{},
		Metadata:    "f3/catalog/v1/" + name + ".json",
	}
	for _, m := range methods {
		desc.Methods = append(desc.Methods, m(service))
	}
	return desc
}

// FullMethod returns "/<service>/<method>".
func FullMethod(service, method string) string {
	return "/" + service + "/" + method
}

// Error maps a domain or infrastructure error to a gRPC status error. Status errors pass through.
func Error(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case domainerr.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	case domainerr.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case domainerr.IsConflict(err):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
