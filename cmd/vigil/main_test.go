package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/vigil/internal/adapters/notifier"
	"go.trai.ch/vigil/internal/adapters/telemetry"
	"go.trai.ch/vigil/internal/app"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/vigil/internal/core/ports/mocks"
	"go.trai.ch/vigil/internal/engine/session"
	"go.uber.org/mock/gomock"
)

type mainTest struct {
	loader    *mocks.MockConfigLoader
	logger    *mocks.MockLogger
	connector *mocks.MockStatusConnector
	provider  ComponentProvider
}

func setupMainTest(t *testing.T) *mainTest {
	t.Helper()
	ctrl := gomock.NewController(t)

	mt := &mainTest{
		loader:    mocks.NewMockConfigLoader(ctrl),
		logger:    mocks.NewMockLogger(ctrl),
		connector: mocks.NewMockStatusConnector(ctrl),
	}

	tracer := telemetry.NewOTelTracer("main-test")
	hub := notifier.New(mt.logger, nil)
	application := app.New(
		mt.loader,
		session.NewFactory(mocks.NewMockBackendFactory(ctrl), hub, tracer, mt.logger),
		tracer,
		hub,
		mt.connector,
		mocks.NewMockFileWatcher(ctrl),
		mt.logger,
	)

	mt.provider = func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: mt.logger}, func() {}, nil
	}
	return mt
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	mt := setupMainTest(t)

	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), mt.provider)
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run logs the error and returns 1 when the command fails.
func TestRun_ExecutionError(t *testing.T) {
	mt := setupMainTest(t)

	loadErr := errors.New("load failed")
	mt.loader.EXPECT().Load(".").Return(nil, loadErr)
	mt.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, loadErr)
	})

	exitCode := run(context.Background(), []string{"get", "metrics"}, io.Discard, mt.provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_InvalidKey verifies that key validation happens before any config is read.
func TestRun_InvalidKey(t *testing.T) {
	mt := setupMainTest(t)
	mt.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrUnknownDomain)
	})

	exitCode := run(context.Background(), []string{"get", "gossip"}, io.Discard, mt.provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_Signal verifies that cancelling the context ends a blocked command.
func TestRun_Signal(t *testing.T) {
	mt := setupMainTest(t)
	ctrl := gomock.NewController(t)

	client := mocks.NewMockStatusClient(ctrl)
	started := make(chan struct{})
	client.EXPECT().Status(gomock.Any()).DoAndReturn(func(ctx context.Context) (*ports.StatusReport, error) {
		close(started)
		<-ctx.Done()
		return nil, errors.Join(domain.ErrStatusUnavailable, ctx.Err())
	})
	client.EXPECT().Close().Return(nil)
	mt.connector.EXPECT().Dial("/tmp/vigil-test.sock").Return(client, nil)
	mt.logger.EXPECT().Error(gomock.Any()).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan int)

	go func() {
		errCh <- run(ctx, []string{"status", "--socket", "/tmp/vigil-test.sock"}, io.Discard, mt.provider)
	}()

	<-started
	cancel()

	select {
	case ret := <-errCh:
		assert.Equal(t, 1, ret)
	case <-time.After(2 * time.Second):
		t.Fatal("run() did not return after cancellation")
	}
}
