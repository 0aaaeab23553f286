package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-storefront/config"
	"github.com/fekuna/omnipos-storefront/internal/app"
	"github.com/fekuna/omnipos-storefront/internal/auth"
	"github.com/fekuna/omnipos-storefront/internal/catalog"
	"github.com/fekuna/omnipos-storefront/internal/kv"
	"github.com/fekuna/omnipos-storefront/internal/kv/memory"
	kvpostgres "github.com/fekuna/omnipos-storefront/internal/kv/postgres"
	kvredis "github.com/fekuna/omnipos-storefront/internal/kv/redis"
	"github.com/fekuna/omnipos-storefront/internal/listener"
	"github.com/fekuna/omnipos-storefront/internal/logger"
	"github.com/fekuna/omnipos-storefront/internal/notify"
	"github.com/fekuna/omnipos-storefront/internal/search"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
		FilePath:          cfg.Logger.FilePath,
		MaxSizeMB:         cfg.Logger.MaxSizeMB,
		MaxBackups:        cfg.Logger.MaxBackups,
		MaxAgeDays:        cfg.Logger.MaxAgeDays,
	}

	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Initialize i18n notifications
	bundle, err := notify.NewBundle()
	if err != nil {
		appLogger.Fatal("Could not load notification messages", zap.Error(err))
	}
	notifier := notify.NewLocalizedNotifier(bundle, cfg.Server.Locale, appLogger, nil)

	// 4. Open key-value storage
	kvStore, closeStore := openStorage(cfg, appLogger)
	defer closeStore()

	// 5. Initialize runtime context
	var catalogClient *catalog.Client
	if cfg.Catalog.BaseURL != "" {
		catalogClient = catalog.NewClient(catalog.Config{
			BaseURL: cfg.Catalog.BaseURL,
			Token:   cfg.Catalog.Token,
			Timeout: cfg.Catalog.Timeout,
		}, appLogger)
		appLogger.Info("Remote catalog configured", zap.String("base_url", cfg.Catalog.BaseURL))
	}

	rt := app.New(app.Deps{KV: kvStore, Notifier: notifier, Logger: appLogger, Catalog: catalogClient})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rt.Init(ctx)

	// 6. Initialize search indexer
	var indexer *search.Indexer
	if cfg.Elastic.Enabled {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch (product search will not be updated)", zap.Error(err))
		} else {
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
			if err := esClient.CreateIndex(ctx, cfg.Elastic.Index, search.ProductMapping); err != nil {
				appLogger.Warn("Could not create search index", zap.String("index", cfg.Elastic.Index), zap.Error(err))
			}
			indexer = search.NewIndexer(esClient, cfg.Elastic.Index, cfg.Elastic.QueueSize, rt.Store.Products, appLogger)
			rt.Subscribe(indexer.Handle)
			indexer.Start(ctx)
		}
	}

	// 7. Initialize order listener
	var reader listener.MessageReader
	if cfg.Kafka.Enabled {
		reader = listener.NewKafkaReader(&listener.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		})
		appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
		orderListener := listener.NewOrderListener(reader, rt.Store, appLogger)
		go orderListener.Start(ctx)
	}

	// 8. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(auth.ContextInterceptor()),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Register Reflection
	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port), zap.String("storage", cfg.Storage.Driver))

	// Graceful Shutdown
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	grpcServer.GracefulStop()

	cancel()
	if reader != nil {
		if err := reader.Close(); err != nil {
			appLogger.Warn("Failed to close Kafka reader", zap.Error(err))
		}
	}
	if indexer != nil {
		indexer.Close()
	}

	teardownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := rt.Teardown(teardownCtx); err != nil {
		appLogger.Error("Failed to tear down runtime", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

// openStorage connects the configured key-value backend. The returned
// function releases its connections.
func openStorage(cfg *config.Config, appLogger logger.ZapLogger) (kv.Store, func()) {
	switch cfg.Storage.Driver {
	case config.StorageRedis:
		client, err := kvredis.NewRedisClient(&kvredis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		return kvredis.NewStore(client, cfg.Storage.Namespace, cfg.Storage.QuotaBytes), func() { _ = client.Close() }

	case config.StoragePostgres:
		db, err := kvpostgres.NewPostgres(&kvpostgres.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to database", zap.Error(err))
		}
		appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

		pg := kvpostgres.NewPGStore(db, cfg.Storage.Namespace, cfg.Storage.QuotaBytes)
		if err := pg.Migrate(context.Background()); err != nil {
			appLogger.Fatal("Could not migrate key-value table", zap.Error(err))
		}
		return pg, func() { _ = db.Close() }

	case config.StorageMemory:
		return memory.New(cfg.Storage.QuotaBytes), func() {}

	default:
		appLogger.Fatal("Unknown storage driver", zap.String("driver", cfg.Storage.Driver))
		return nil, nil
	}
}
