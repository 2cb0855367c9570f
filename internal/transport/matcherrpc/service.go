package matcherrpc

import "google.golang.org/grpc"

// serviceName is the fully-qualified RPC service name advertised to
// clients. There is no .proto file behind it; the ServiceDesc below is
// written by hand, the same shape protoc would otherwise generate.
const serviceName = "matchcore.matcherrpc.MatcherService"

// ServiceDesc describes the single bidirectional-streaming RPC,
// "Stream", that carries every order/cancel/state envelope for one
// client connection for its lifetime. Registering it on a *grpc.Server
// requires no generated stub — grpc.ServiceDesc is itself the public
// contract codegen normally fills in.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*streamServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Stream",
			Handler:       streamHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "matcherrpc.proto",
}

// streamServer is the interface grpc.ServiceDesc's HandlerType points
// at. Server implements it; the type itself only exists to give the
// hand-written ServiceDesc something to describe.
type streamServer interface {
	Stream(grpc.ServerStream) error
}

func streamHandler(srv any, stream grpc.ServerStream) error {
	return srv.(streamServer).Stream(stream)
}
