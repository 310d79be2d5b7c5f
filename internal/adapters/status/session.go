package status

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/zerr"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// SessionService is the gRPC service that runs commands in a live session.
	SessionService = "vigil.v1.SessionService"

	mutateMethod = "/" + SessionService + "/Mutate"

	// errorDomain scopes the ErrorInfo reasons below.
	errorDomain = "vigil"
)

// sessionServer is the handler type of SessionService. Requests and replies
// are structpb.Struct messages; see encodeRecord for the reply fields.
type sessionServer interface {
	Mutate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var sessionServiceDesc = grpc.ServiceDesc{
	ServiceName: SessionService,
	HandlerType: (*sessionServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Mutate",
			Handler:    mutateHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}

//nolint:revive // grpc.MethodHandler signature
func mutateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(sessionServer).Mutate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: mutateMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(sessionServer).Mutate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// errorReasons maps the sentinels a mutation can fail with onto the wire.
var errorReasons = []struct {
	reason string
	code   codes.Code
	err    error
}{
	{"UNKNOWN_MUTATION", codes.InvalidArgument, domain.ErrUnknownMutation},
	{"INVALID_PAYLOAD", codes.InvalidArgument, domain.ErrInvalidPayload},
	{"MUTATION_PENDING", codes.FailedPrecondition, domain.ErrMutationPending},
	{"TIMEOUT", codes.DeadlineExceeded, domain.ErrTimeout},
	{"BACKEND", codes.Aborted, domain.ErrBackend},
	{"TRANSPORT", codes.Aborted, domain.ErrTransport},
	{"SESSION_CLOSED", codes.FailedPrecondition, domain.ErrSessionClosed},
}

// toStatusError converts a pipeline error into a gRPC status carrying the
// sentinel as an ErrorInfo reason.
func toStatusError(err error) error {
	for _, r := range errorReasons {
		if !errors.Is(err, r.err) {
			continue
		}
		st, detailErr := grpcstatus.New(r.code, err.Error()).WithDetails(&errdetails.ErrorInfo{
			Reason: r.reason,
			Domain: errorDomain,
		})
		if detailErr != nil {
			return grpcstatus.Error(r.code, err.Error())
		}
		return st.Err()
	}
	return grpcstatus.Error(codes.Unknown, err.Error())
}

// fromStatusError restores the sentinel of a status produced by
// toStatusError. A call that never reached a session reports
// domain.ErrStatusUnavailable.
func fromStatusError(err error) error {
	st, ok := grpcstatus.FromError(err)
	if !ok {
		return errors.Join(domain.ErrStatusUnavailable, err)
	}

	switch st.Code() {
	case codes.Unavailable, codes.Unimplemented:
		return errors.Join(domain.ErrStatusUnavailable, err)
	}

	for _, detail := range st.Details() {
		info, ok := detail.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != errorDomain {
			continue
		}
		for _, r := range errorReasons {
			if r.reason == info.GetReason() {
				return zerr.Wrap(errors.Join(r.err, errors.New(st.Message())), "session rejected mutation")
			}
		}
	}
	return zerr.Wrap(errors.New(st.Message()), "session rejected mutation")
}

func encodeRequest(kind domain.MutationKind, payload json.RawMessage) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(map[string]any{
		"kind":    string(kind),
		"payload": string(payload),
	})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode mutation request")
	}
	return req, nil
}

func decodeRequest(req *structpb.Struct) (domain.MutationKind, json.RawMessage, error) {
	fields := req.GetFields()
	kind, err := domain.ParseMutationKind(fields["kind"].GetStringValue())
	if err != nil {
		return "", nil, err
	}
	return kind, json.RawMessage(fields["payload"].GetStringValue()), nil
}

// encodeRecord flattens rec into a Struct. Raw JSON travels as strings so
// numbers keep their precision.
func encodeRecord(rec *domain.MutationRecord) (*structpb.Struct, error) {
	affected := make([]any, 0, len(rec.AffectedKeys))
	for _, key := range rec.AffectedKeys {
		params := make([]any, 0, len(key.Params()))
		for _, p := range key.Params() {
			params = append(params, p)
		}
		affected = append(affected, map[string]any{"domain": key.Domain, "params": params})
	}

	reply, err := structpb.NewStruct(map[string]any{
		"id":         rec.ID,
		"kind":       string(rec.Kind),
		"status":     rec.Status.String(),
		"actor":      rec.Actor,
		"payload":    string(rec.Payload),
		"result":     string(rec.Result),
		"affected":   affected,
		"startedAt":  rec.StartedAt.Format(time.RFC3339Nano),
		"finishedAt": rec.FinishedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode mutation record")
	}
	return reply, nil
}

func decodeRecord(reply *structpb.Struct) (*domain.MutationRecord, error) {
	fields := reply.GetFields()
	str := func(name string) string { return fields[name].GetStringValue() }

	rec := &domain.MutationRecord{
		ID:     str("id"),
		Kind:   domain.MutationKind(str("kind")),
		Status: parseMutationStatus(str("status")),
		Actor:  str("actor"),
	}
	if raw := str("payload"); raw != "" {
		rec.Payload = json.RawMessage(raw)
	}
	if raw := str("result"); raw != "" {
		rec.Result = json.RawMessage(raw)
	}

	for _, v := range fields["affected"].GetListValue().GetValues() {
		entry := v.GetStructValue().GetFields()
		var params []string
		for _, p := range entry["params"].GetListValue().GetValues() {
			params = append(params, p.GetStringValue())
		}
		rec.AffectedKeys = append(rec.AffectedKeys, domain.NewKey(entry["domain"].GetStringValue(), params...))
	}

	var err error
	if rec.StartedAt, err = time.Parse(time.RFC3339Nano, str("startedAt")); err != nil {
		return nil, zerr.Wrap(err, "malformed start time")
	}
	if rec.FinishedAt, err = time.Parse(time.RFC3339Nano, str("finishedAt")); err != nil {
		return nil, zerr.Wrap(err, "malformed finish time")
	}
	return rec, nil
}

func parseMutationStatus(name string) domain.MutationStatus {
	for _, s := range []domain.MutationStatus{
		domain.MutationPending,
		domain.MutationSucceeded,
		domain.MutationFailed,
	} {
		if s.String() == name {
			return s
		}
	}
	return domain.MutationIdle
}
