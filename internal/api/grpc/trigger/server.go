package trigger

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/taws-partitions/internal/service/composer"
)

// Feed abstracts the source of monitor evaluations.
type Feed interface {
	Snapshot() composer.Snapshot
}

// Server implements the TriggerService gRPC API.
type Server struct {
	// feed provides the latest monitor evaluation.
	feed Feed
}

// NewServer wires the provided feed into a gRPC handler.
func NewServer(feed Feed) *Server {
	return &Server{
		feed: feed,
	}
}

// GetTriggerState returns the latest monitor evaluation.
func (s *Server) GetTriggerState(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	response, err := ToStruct(s.feed.Snapshot())
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode trigger state")
	}

	return response, nil
}

// ToStruct converts a snapshot into the wire document.
func ToStruct(snapshot composer.Snapshot) (*structpb.Struct, error) {
	active := make([]any, len(snapshot.Active))
	for i, message := range snapshot.Active {
		active[i] = message
	}

	fired := make(map[string]any, len(snapshot.Fired))
	for message, count := range snapshot.Fired {
		fired[message] = float64(count)
	}

	return structpb.NewStruct(map[string]any{
		"evaluated_at": snapshot.EvaluatedAt,
		"active":       active,
		"fired":        fired,
	})
}

// FromStruct converts the wire document back into a snapshot.
func FromStruct(document *structpb.Struct) composer.Snapshot {
	fields := document.GetFields()

	snapshot := composer.Snapshot{
		EvaluatedAt: fields["evaluated_at"].GetNumberValue(),
		Fired:       make(map[string]uint64),
	}

	for _, value := range fields["active"].GetListValue().GetValues() {
		snapshot.Active = append(snapshot.Active, value.GetStringValue())
	}

	for message, count := range fields["fired"].GetStructValue().GetFields() {
		snapshot.Fired[message] = uint64(count.GetNumberValue())
	}

	return snapshot
}
