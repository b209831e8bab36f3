package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
)

type fakeTaskServer struct {
	startErr error
	started  bool
	shutdown bool
}

func (f *fakeTaskServer) Start(_ asynq.Handler) error {
	f.started = true
	return f.startErr
}

func (f *fakeTaskServer) Shutdown() {
	f.shutdown = true
}

func TestServiceStartBlocksUntilContextDone(t *testing.T) {
	server := &fakeTaskServer{}
	svc := &Service{name: "worker", server: server, mux: asynq.NewServeMux()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("start returned before cancel: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start should exit cleanly, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("start did not return after cancel")
	}
	if !server.started {
		t.Fatalf("expected task server to be started")
	}

	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if !server.shutdown {
		t.Fatalf("expected task server shutdown")
	}
}

func TestServiceStartReturnsServerError(t *testing.T) {
	boom := errors.New("redis unreachable")
	svc := &Service{server: &fakeTaskServer{startErr: boom}, mux: asynq.NewServeMux()}

	if err := svc.Start(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected start error, got %v", err)
	}
	if err := (&Service{}).Start(context.Background()); err == nil {
		t.Fatalf("expected error for uninitialized service")
	}
}
