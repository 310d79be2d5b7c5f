package status

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client implements ports.StatusClient.
type Client struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
}

// Dial connects to the status socket. The connection is made lazily on the
// first query.
func Dial(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient("unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrStatusUnavailable, err), "status client creation failed")
	}

	return &Client{conn: conn, health: healthpb.NewHealthClient(conn)}, nil
}

// Status queries the session and stream health.
func (c *Client) Status(ctx context.Context) (*ports.StatusReport, error) {
	session, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return nil, errors.Join(domain.ErrStatusUnavailable, err)
	}

	var header metadata.MD
	stream, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: StreamService}, grpc.Header(&header))
	if err != nil {
		return nil, errors.Join(domain.ErrStatusUnavailable, err)
	}

	report := &ports.StatusReport{
		Session: statusName(session.GetStatus()),
		Stream:  statusName(stream.GetStatus()),
	}
	if values := header.Get(StateHeader); len(values) > 0 {
		report.Stream = values[0]
	}
	return report, nil
}

// Mutate submits a mutation to the session listening on the socket.
func (c *Client) Mutate(ctx context.Context, kind domain.MutationKind, payload json.RawMessage) (*domain.MutationRecord, error) {
	req, err := encodeRequest(kind, payload)
	if err != nil {
		return nil, err
	}

	reply := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, mutateMethod, req, reply); err != nil {
		return nil, fromStatusError(err)
	}
	return decodeRecord(reply)
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func statusName(s healthpb.HealthCheckResponse_ServingStatus) string {
	return strings.ToLower(strings.ReplaceAll(s.String(), "_", "-"))
}
