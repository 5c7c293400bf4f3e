package grpc

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// NewGRPCServer builds the probe server: the standard health service plus reflection.
// serviceName is reported SERVING until the returned cleanup runs.
func NewGRPCServer(appLogger *logger.Logger, serviceName string) (*grpc.Server, *health.Server, func()) {
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(LoggingInterceptor(appLogger)),
	)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(server, healthSrv)
	healthSrv.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(server)

	appLogger.Info("gRPC server configured", zap.String("service", serviceName), zap.Strings("services", []string{"grpc.health.v1.Health", "reflection"}))

	cleanup := func() {
		appLogger.Info("Calling gRPC server's GracefulStop...")
		healthSrv.Shutdown()
		server.GracefulStop()
		appLogger.Info("gRPC server GracefulStop completed.")
	}
	return server, healthSrv, cleanup
}

func LoggingInterceptor(appLogger *logger.Logger) grpc.UnaryServerInterceptor {
	log := appLogger.Named("gRPC")
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		duration := time.Since(start)
		if err != nil {
			log.Error("gRPC request failed", zap.String("method", info.FullMethod), zap.Duration("duration", duration), zap.Error(err))
		} else {
			log.Debug("gRPC request completed", zap.String("method", info.FullMethod), zap.Duration("duration", duration))
		}
		return resp, err
	}
}
