// Package rpc exposes the selection worker pool as a gRPC service.
//
// Messages are encoded by wire.Codec rather than generated protobuf code,
// so the service descriptor is declared here by hand. The layout matches
//
//	service SelectionService {
//	  rpc Select(SelectRequest) returns (SelectResponse);
//	}
//
// in package selection.v1.
package rpc

import (
	"context"

	"github.com/banshee-data/pointselect/internal/selection/wire"
	"google.golang.org/grpc"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "selection.v1.SelectionService"

	// SelectMethod is the full method path of the Select RPC.
	SelectMethod = "/" + ServiceName + "/Select"
)

// SelectionServer is the server API for SelectionService.
type SelectionServer interface {
	Select(ctx context.Context, req *wire.SelectRequest) (*wire.SelectResponse, error)
}

// RegisterSelectionServer registers srv on s.
func RegisterSelectionServer(s grpc.ServiceRegistrar, srv SelectionServer) {
	s.RegisterService(&serviceDesc, srv)
}

func selectHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.SelectRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SelectionServer).Select(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SelectMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SelectionServer).Select(ctx, req.(*wire.SelectRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SelectionServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Select",
			Handler:    selectHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "selection/v1/selection.proto",
}
