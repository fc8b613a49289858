package grpc

import (
	"context"

	"google.golang.org/grpc/health/grpc_health_v1"
)

// healthServer answers Check by pinging the database on every call.
type healthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	pinger Pinger
}

func (h *healthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := h.pinger.Ping(ctx); err != nil {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	return &grpc_health_v1.HealthCheckResponse{Status: status}, nil
}
