package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/hongnhan/livesignal/internal/config"
	"github.com/hongnhan/livesignal/internal/coordinator"
	"github.com/hongnhan/livesignal/internal/handler"
	"github.com/hongnhan/livesignal/internal/health"
	"github.com/hongnhan/livesignal/internal/hub"
	"github.com/hongnhan/livesignal/internal/logging"
	"github.com/hongnhan/livesignal/internal/metrics"
	"github.com/hongnhan/livesignal/internal/model"
	"github.com/hongnhan/livesignal/internal/transcode"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, cfg.Service.Name)
	logger.Info().Str("environment", cfg.Service.Environment).Msg("starting signaling service")

	collector := metrics.NewPrometheusCollector()

	// Transcoding pipeline collaborator
	var tc transcode.Controller = transcode.Noop{}
	if cfg.Transcoder.Enabled {
		tc = transcode.NewFFmpeg(cfg.Transcoder.RTMPURL, logger)
	}

	// Transport hub and coordinator
	h := hub.New(hub.Options{
		WriteWait:      cfg.WebSocket.WriteWait,
		PongWait:       cfg.WebSocket.PongWait,
		PingPeriod:     cfg.WebSocket.PingPeriod,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
		SendBuffer:     cfg.WebSocket.SendBuffer,
	}, logger)
	coord := coordinator.New(h, tc, collector, logger)
	h.SetRouter(coord)
	go h.Run()

	// Health checker
	checker := health.NewChecker(0)
	checker.Register("coordinator", func(ctx context.Context) (health.Status, error) {
		return health.StatusUp, nil
	})
	checker.Register("transcoder", func(ctx context.Context) (health.Status, error) {
		status, _ := coord.Status()
		if status == model.StatusLive && !tc.Ready() {
			return health.StatusDown, nil
		}
		return health.StatusUp, nil
	})
	checker.Start()

	// HTTP server
	wsHandler := handler.NewWebSocketHandler(cfg, h, coord, logger)
	httpHandler := handler.NewHTTPHandler(coord)

	router := mux.NewRouter()
	router.HandleFunc(cfg.WebSocket.Path, wsHandler.HandleWebSocket)
	router.Handle("/healthz", checker.HTTPHandler()).Methods("GET")
	router.Handle("/metrics", collector.Handler()).Methods("GET")
	httpHandler.SetupRoutes(router)

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logger.Info().Str("address", cfg.HTTP.Address).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// gRPC server with the standard health service
	grpcServer := grpc.NewServer()
	healthServer := grpchealth.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	go func() {
		logger.Info().Str("address", cfg.GRPC.Address).Msg("starting gRPC server")
		lis, err := net.Listen("tcp", cfg.GRPC.Address)
		if err != nil {
			logger.Fatal().Err(err).Str("address", cfg.GRPC.Address).Msg("failed to listen")
		}
		if err := grpcServer.Serve(lis); err != nil {
			logger.Fatal().Err(err).Msg("gRPC server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	grpcServer.GracefulStop()
	checker.Stop()
	h.Close()
	if err := tc.Stop(); err != nil {
		logger.Error().Err(err).Msg("transcoder stop error")
	}

	logger.Info().Msg("shutdown complete")
}
