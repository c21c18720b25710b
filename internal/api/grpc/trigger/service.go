package trigger

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "taws.monitor.v1.TriggerService"
	// GetTriggerStateMethod is the full method name of GetTriggerState.
	GetTriggerStateMethod = "/" + ServiceName + "/GetTriggerState"
)

// TriggerServiceServer is the server API of the trigger feed.
type TriggerServiceServer interface {
	// GetTriggerState returns the latest monitor evaluation.
	GetTriggerState(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// ServiceDesc describes TriggerService for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // Mirrors generated descriptors.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TriggerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetTriggerState",
			Handler:    getTriggerStateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "taws/monitor/v1/trigger.proto",
}

// RegisterTriggerServiceServer registers srv on s.
func RegisterTriggerServiceServer(s grpc.ServiceRegistrar, srv TriggerServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func getTriggerStateHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(TriggerServiceServer).GetTriggerState(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetTriggerStateMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TriggerServiceServer).GetTriggerState(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}
