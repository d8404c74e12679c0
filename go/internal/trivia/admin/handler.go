package admin

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// AdminServiceName is the fully-qualified name of the AdminService service.
	AdminServiceName = "trivia.admin.v1.AdminService"

	// AdminServiceGetStatsProcedure is the fully-qualified name of the GetStats RPC.
	AdminServiceGetStatsProcedure = "/trivia.admin.v1.AdminService/GetStats"
	// AdminServiceGetRoomProcedure is the fully-qualified name of the GetRoom RPC.
	AdminServiceGetRoomProcedure = "/trivia.admin.v1.AdminService/GetRoom"
)

// AdminServiceHandler is implemented by the admin RPC server.
type AdminServiceHandler interface {
	GetStats(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error)
	GetRoom(context.Context, *connect.Request[wrapperspb.StringValue]) (*connect.Response[structpb.Struct], error)
}

// NewAdminServiceHandler builds an HTTP handler serving the admin RPCs.
// It returns the path to mount the handler on.
func NewAdminServiceHandler(svc AdminServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	getStats := connect.NewUnaryHandler(AdminServiceGetStatsProcedure, svc.GetStats, opts...)
	getRoom := connect.NewUnaryHandler(AdminServiceGetRoomProcedure, svc.GetRoom, opts...)

	return "/" + AdminServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AdminServiceGetStatsProcedure:
			getStats.ServeHTTP(w, r)
		case AdminServiceGetRoomProcedure:
			getRoom.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// AdminServiceClient calls the admin RPCs.
type AdminServiceClient struct {
	getStats *connect.Client[emptypb.Empty, structpb.Struct]
	getRoom  *connect.Client[wrapperspb.StringValue, structpb.Struct]
}

// NewAdminServiceClient creates a client for the server at baseURL.
func NewAdminServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AdminServiceClient {
	return &AdminServiceClient{
		getStats: connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+AdminServiceGetStatsProcedure, opts...),
		getRoom:  connect.NewClient[wrapperspb.StringValue, structpb.Struct](httpClient, baseURL+AdminServiceGetRoomProcedure, opts...),
	}
}

func (c *AdminServiceClient) GetStats(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	return c.getStats.CallUnary(ctx, req)
}

func (c *AdminServiceClient) GetRoom(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[structpb.Struct], error) {
	return c.getRoom.CallUnary(ctx, req)
}
