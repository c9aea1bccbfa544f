package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/konkers/sdv-predict/internal/service"
)

// Listener hosts the predictor service and gRPC health on one listener.
type Listener struct {
	lis    net.Listener
	grpc   *grpc.Server
	health *health.Server
}

// New wires the predictor and health services. It does not start serving.
func New(lis net.Listener, p *service.Predictor, opts ...grpc.ServerOption) *Listener {
	gs := grpc.NewServer(opts...)
	hs := health.NewServer()
	Register(gs, &Server{P: p})
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return &Listener{lis: lis, grpc: gs, health: hs}
}

func (l *Listener) Addr() string {
	return l.lis.Addr().String()
}

// SetServing flips the health status, e.g. while game data fails to load.
func (l *Listener) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_SERVING
	if !ok {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	l.health.SetServingStatus(ServiceName, st)
}

// Serve runs until ctx is done, then stops gracefully.
func (l *Listener) Serve(ctx context.Context) error {
	log.Printf("grpc listening at %v", l.lis.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- l.grpc.Serve(l.lis)
	}()

	select {
	case <-ctx.Done():
		l.health.Shutdown()
		l.grpc.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}
