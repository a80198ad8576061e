package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/RenatoCabral2022/wavefactory/internal/config"
	"github.com/RenatoCabral2022/wavefactory/internal/handler"
)

func main() {
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	if cfg.LogDev {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("wavefactory server starting",
		zap.String("listen", cfg.ListenAddr),
		zap.String("grpc", cfg.GRPCAddr),
		zap.Float64("duration", cfg.Duration),
		zap.Float64("maxDuration", cfg.MaxDurationSec),
	)

	h := handler.NewHandlers(cfg.Duration, cfg.MaxDurationSec, logger)
	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler.NewRouter(h),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("http listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	var grpcSrv *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Fatal("grpc listen failed", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
		}
		grpcSrv = grpc.NewServer()
		hs := health.NewServer()
		hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		healthpb.RegisterHealthServer(grpcSrv, hs)
		go func() {
			logger.Info("grpc health listening", zap.String("addr", cfg.GRPCAddr))
			if err := grpcSrv.Serve(lis); err != nil {
				logger.Error("grpc server stopped", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}
