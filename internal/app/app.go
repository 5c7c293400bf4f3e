// Package app wires the housing service together and owns its lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcserver "github.com/Abdurahmanit/GroupProject/housing-service/internal/adapter/grpc"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/adapter/http/middleware"
	natsadapter "github.com/Abdurahmanit/GroupProject/housing-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/adapter/repository/cache"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/usecase"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/view"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/mailer"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/tracer"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/worker/blobcleanup"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	cfg *config.Config
	log *logger.Logger

	httpServer    *http.Server
	grpcServer    *grpc.Server
	grpcCleanup   func()
	metricsServer *http.Server
	limiter       *middleware.RateLimiter
	cleanupWorker *blobcleanup.Worker

	mongoClient    *mongo.Client
	redisClient    *redis.Client
	publisher      *natsadapter.Publisher
	tracerProvider *sdktrace.TracerProvider
}

func New(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (*App, error) {
	a := &App{cfg: cfg, log: appLogger}
	a.tracerProvider = tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	m := metrics.NewMetricsManager(cfg.ServiceName)

	appLogger.Info("Initializing MongoDB client...")
	mongoClient, err := mongodb.Connect(ctx, cfg.MongoURI, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	a.mongoClient = mongoClient
	db := mongoClient.Database(cfg.MongoDatabase)
	if err := mongodb.EnsureIndexes(ctx, db, appLogger); err != nil {
		a.closeStores(ctx)
		return nil, fmt.Errorf("failed to ensure MongoDB indexes: %w", err)
	}

	appLogger.Info("Initializing Redis client...")
	redisClient, err := cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		a.closeStores(ctx)
		return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	a.redisClient = redisClient

	publisher, err := natsadapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
	if err != nil {
		a.closeStores(ctx)
		return nil, fmt.Errorf("failed to initialize NATS publisher: %w", err)
	}
	a.publisher = publisher

	storage, err := s3.NewS3Storage(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL, appLogger)
	if err != nil {
		a.closeStores(ctx)
		return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
	}

	var mail usecase.Mailer = mailer.NewDisabled(appLogger)
	if cfg.SMTPEmail != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword, appLogger)
	}

	listingRepo := mongodb.NewListingRepository(db, appLogger)
	ratingRepo := mongodb.NewRatingRepository(db, appLogger)
	commentRepo := mongodb.NewCommentRepository(db, appLogger)
	likeRepo := mongodb.NewLikeRepository(db, appLogger)
	trackingRepo := mongodb.NewTrackingRepository(db, appLogger)
	userRepo := mongodb.NewUserRepository(db, appLogger)
	queue := blobcleanup.NewCountingQueue(mongodb.NewCleanupTaskRepository(db, appLogger), m)
	ratingCache := cache.NewRatingCache(redisClient)

	photos := usecase.NewPhotoUsecase(storage, queue, appLogger)
	listings := usecase.NewListingUsecase(usecase.ListingDeps{
		Listings:    listingRepo,
		Ratings:     ratingRepo,
		Comments:    commentRepo,
		Likes:       likeRepo,
		Tracking:    trackingRepo,
		Photos:      photos,
		Cache:       cache.NewListingCache(redisClient),
		RatingCache: ratingCache,
		Publisher:   publisher,
		Mailer:      mail,
	}, appLogger)
	tracking := usecase.NewTrackingUsecase(trackingRepo, listings, publisher, appLogger)
	ratings := usecase.NewRatingUsecase(ratingRepo, listings, ratingCache, publisher, appLogger)
	comments := usecase.NewCommentUsecase(commentRepo, likeRepo, listings, publisher, appLogger)
	identity := usecase.NewIdentityUsecase(userRepo, cache.NewSessionStore(redisClient), publisher, cfg.JWTSecret, cfg.JWTTTL, appLogger)

	catalogue := view.NewListingList(listings, ratings, cfg.EnrichConcurrency, appLogger)
	h := handler.New(handler.Deps{
		Identity:  identity,
		Listings:  listings,
		Tracking:  tracking,
		Ratings:   ratings,
		Comments:  comments,
		Catalogue: catalogue,
		Detail:    view.NewDetailView(listings, ratings, tracking, comments, appLogger),
		Dashboard: view.NewDashboardView(tracking, listings, catalogue),
		Likes:     view.NewLikeReconciler(comments, cfg.LikeConfirmTimeout, appLogger),
		Metrics:   m,
	}, appLogger)

	a.limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  rate.Limit(cfg.RateLimitRPS),
		Burst: cfg.RateLimitBurst,
	}, appLogger)
	a.httpServer = &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.NewRouter(h, a.limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.grpcServer, _, a.grpcCleanup = grpcserver.NewGRPCServer(appLogger, cfg.ServiceName)
	a.metricsServer = metrics.NewMetricsServer(cfg.PrometheusMetricsPort, appLogger, m)
	a.cleanupWorker = blobcleanup.NewWorker(queue, storage, blobcleanup.Config{
		Interval:    cfg.CleanupInterval,
		BatchSize:   cfg.CleanupBatchSize,
		MaxAttempts: cfg.CleanupMaxAttempts,
	}, m, appLogger)

	appLogger.Info("Application components initialized")
	return a, nil
}

// Run serves until SIGINT/SIGTERM or a server failure, then shuts everything down.
func (a *App) Run() error {
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		a.cleanupWorker.Start(workerCtx)
	}()

	serverErr := make(chan error, 3)

	go func() {
		a.log.Info("HTTP server starting", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("http server: %w", err)
		}
	}()

	lis, err := net.Listen("tcp", ":"+a.cfg.GRPCPort)
	if err != nil {
		stopWorker()
		<-workerDone
		return fmt.Errorf("failed to listen on gRPC port %s: %w", a.cfg.GRPCPort, err)
	}
	go func() {
		a.log.Info("gRPC server starting", zap.String("addr", lis.Addr().String()))
		if err := a.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serverErr <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	if a.metricsServer != nil {
		go func() {
			a.log.Info("Prometheus metrics server starting", zap.String("addr", a.metricsServer.Addr))
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		a.log.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case runErr = <-serverErr:
		a.log.Error("Server failed, shutting down", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	a.grpcCleanup()
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			a.log.Error("Metrics server shutdown failed", zap.Error(err))
		}
	}
	a.limiter.Stop()

	stopWorker()
	<-workerDone

	a.closeStores(shutdownCtx)
	a.log.Info("Application shut down successfully")
	return runErr
}

func (a *App) closeStores(ctx context.Context) {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis client", zap.Error(err))
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.log.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}
}
