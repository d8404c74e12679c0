// Package admin serves operator inspection RPCs over Connect.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"connectrpc.com/grpcreflect"
	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/mcdev12/triviaroom/go/internal/trivia/orchestrator"
	"github.com/mcdev12/triviaroom/go/internal/trivia/room"
)

// RoomInspector defines what the admin service needs from the orchestrator
type RoomInspector interface {
	RoomState(roomID string) (*orchestrator.RoomState, error)
	Stats() orchestrator.Stats
}

// StatsSource contributes a named section to GetStats.
type StatsSource func() any

// Service implements the AdminService RPCs
type Service struct {
	rooms   RoomInspector
	sources map[string]StatsSource
}

// NewService creates a new admin service
func NewService(rooms RoomInspector) *Service {
	return &Service{
		rooms:   rooms,
		sources: make(map[string]StatsSource),
	}
}

// Verify that Service implements the AdminServiceHandler interface
var _ AdminServiceHandler = (*Service)(nil)

// AddStatsSource adds a section to GetStats under name. Call before serving.
func (s *Service) AddStatsSource(name string, source StatsSource) {
	s.sources[name] = source
}

// GetStats returns room counts plus any registered sections
func (s *Service) GetStats(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	sections := map[string]any{
		"rooms": s.rooms.Stats(),
	}
	for name, source := range s.sources {
		sections[name] = source()
	}

	out, err := toStruct(sections)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(out), nil
}

// GetRoom returns the state of a single room
func (s *Service) GetRoom(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[structpb.Struct], error) {
	roomID := strings.TrimSpace(req.Msg.GetValue())
	if roomID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("room id is required"))
	}

	state, err := s.rooms.RoomState(roomID)
	if errors.Is(err, room.ErrRoomNotFound) {
		return nil, connect.NewError(connect.CodeNotFound, err)
	}
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to get room state")
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out, err := toStruct(state)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(out), nil
}

// RegisterRoutes mounts the admin handlers and reflection on mux
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	path, handler := NewAdminServiceHandler(s)
	mux.Handle(path, handler)
	log.Info().Str("path", path).Msg("admin service registered")

	// Setup reflection for grpcui/grpcurl
	if err := RegisterDescriptor(); err != nil {
		log.Warn().Err(err).Msg("admin reflection disabled")
		return
	}
	reflector := grpcreflect.NewStaticReflector(AdminServiceName)
	mux.Handle(grpcreflect.NewHandlerV1(reflector))
	mux.Handle(grpcreflect.NewHandlerV1Alpha(reflector))
}

// toStruct converts v to a protobuf Struct through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal: %w", err)
	}

	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build struct: %w", err)
	}
	return out, nil
}
