// Package status publishes the session state over a Unix socket using the
// gRPC health protocol, and queries it from other processes. A session that
// supplies a mutation runner also accepts mutations over the same socket.
package status

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// StreamService is the health service name reporting the stream.
	StreamService = "vigil.stream"

	// StateHeader carries the detailed stream state on every response.
	StateHeader = "vigil-stream-state"
)

// Server implements ports.StatusPublisher.
type Server struct {
	socketPath string
	runner     ports.MutationRunner
	health     *health.Server
	grpc       *grpc.Server

	mu    sync.RWMutex
	state domain.ConnState
}

// NewServer creates a server that will listen on socketPath once served.
// With a nil runner the session service is not offered.
func NewServer(socketPath string, runner ports.MutationRunner) *Server {
	s := &Server{
		socketPath: socketPath,
		runner:     runner,
		health:     health.NewServer(),
	}
	s.grpc = grpc.NewServer(grpc.UnaryInterceptor(s.stateHeader))
	healthpb.RegisterHealthServer(s.grpc, s.health)
	if runner != nil {
		s.grpc.RegisterService(&sessionServiceDesc, s)
	}

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(StreamService, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// SetConnState records the latest stream state.
func (s *Server) SetConnState(state domain.ConnState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	serving := healthpb.HealthCheckResponse_NOT_SERVING
	if state.Phase == domain.PhaseConnected {
		serving = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(StreamService, serving)
}

// Serve listens on the socket until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create status directory")
	}

	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return zerr.Wrap(err, "failed to remove stale socket")
	}

	lis, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to listen on status socket"), "path", s.socketPath)
	}

	if err := os.Chmod(s.socketPath, domain.SocketPerm); err != nil {
		_ = lis.Close()
		return zerr.Wrap(err, "failed to set socket permissions")
	}

	defer func() { _ = os.Remove(s.socketPath) }()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.grpc.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpc.GracefulStop()
		return nil
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return zerr.Wrap(err, "status server stopped")
	}
}

// Mutate runs a mutation through the session's pipeline.
func (s *Server) Mutate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	kind, payload, err := decodeRequest(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	rec, err := s.runner.Execute(ctx, kind, payload)
	if err != nil {
		return nil, toStatusError(err)
	}
	reply, err := encodeRecord(rec)
	if err != nil {
		return nil, toStatusError(err)
	}
	return reply, nil
}

func (s *Server) stateHeader(
	ctx context.Context,
	req any,
	_ *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	s.mu.RLock()
	state := s.state.String()
	s.mu.RUnlock()

	_ = grpc.SetHeader(ctx, metadata.Pairs(StateHeader, state))
	return handler(ctx, req)
}
