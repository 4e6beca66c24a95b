package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sbilibin2017/gw-recipe-book/internal/cookies"
	"github.com/sbilibin2017/gw-recipe-book/internal/jwt"
	"github.com/sbilibin2017/gw-recipe-book/internal/logger"
	"github.com/sbilibin2017/gw-recipe-book/internal/migrations"
	"github.com/sbilibin2017/gw-recipe-book/internal/repositories"
	"github.com/sbilibin2017/gw-recipe-book/internal/services"
	"github.com/sbilibin2017/gw-recipe-book/internal/storage"
	"github.com/sbilibin2017/gw-recipe-book/internal/views"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// Backend drivers
const (
	driverPostgres = "postgres"
	driverMongo    = "mongo"
	driverMemory   = "memory"
	driverRedis    = "redis"
	driverDisk     = "disk"
	driverS3       = "s3"
)

// uploadsPrefix is the URL prefix disk uploads are served under.
const uploadsPrefix = "/uploads"

// config holds every setting read at start-up.
type config struct {
	AppHost   string
	AppPort   string
	LogLevel  string
	LogFormat string

	StoreDriver string

	PGHost         string
	PGPort         int
	PGUser         string
	PGPassword     string
	PGDB           string
	PGMaxOpenConns int
	PGMaxIdleConns int

	MongoURI string
	MongoDB  string

	SessionDriver     string
	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int
	SessionSecretKey  string
	SessionTTL        time.Duration

	CookieName   string
	CookieDomain string
	CookieSecure bool

	UploadDriver   string
	UploadDir      string
	UploadMaxBytes int64
	S3             storage.S3Config

	KafkaBrokers []string
	KafkaTopic   string

	PublicDir string
}

func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Version: %s\nCommit: %s\nBuild: %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns
// the application, storage, session, upload and broker configuration.
func parseConfig(path string) (cfg config, err error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "3000")
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("APP_LOG_FORMAT", "json")
	cfg.PublicDir = getEnv("PUBLIC_DIR", "public")

	// Entity store config
	cfg.StoreDriver = getEnv("STORE_DRIVER", driverPostgres)
	switch cfg.StoreDriver {
	case driverPostgres, driverMongo, driverMemory:
	default:
		return cfg, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	// PostgreSQL config
	cfg.PGHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.PGUser = getEnv("POSTGRES_USER", "user")
	cfg.PGPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.PGDB = getEnv("POSTGRES_DB", "recipe_app")
	if cfg.PGPort, err = strconv.Atoi(getEnv("POSTGRES_PORT", "5432")); err != nil {
		return
	}
	if cfg.PGMaxOpenConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_OPEN_CONNS", "16")); err != nil {
		return
	}
	if cfg.PGMaxIdleConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_IDLE_CONNS", "8")); err != nil {
		return
	}

	// MongoDB config
	cfg.MongoURI = getEnv("MONGO_URI", "mongodb://127.0.0.1:27017")
	cfg.MongoDB = getEnv("MONGO_DB", "recipe_app")

	// Session config
	cfg.SessionDriver = getEnv("SESSION_DRIVER", driverRedis)
	switch cfg.SessionDriver {
	case driverRedis, driverMemory:
	default:
		return cfg, fmt.Errorf("unknown SESSION_DRIVER %q", cfg.SessionDriver)
	}
	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	if cfg.RedisPort, err = strconv.Atoi(getEnv("REDIS_PORT", "6379")); err != nil {
		return
	}
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return
	}
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisPoolSize, err = strconv.Atoi(getEnv("REDIS_POOL_SIZE", "10")); err != nil {
		return
	}
	if cfg.RedisMinIdleConns, err = strconv.Atoi(getEnv("REDIS_MIN_IDLE_CONNS", "2")); err != nil {
		return
	}
	cfg.SessionSecretKey = getEnv("SESSION_SECRET_KEY", "anyRandomSecretString")
	ttlSecond, err := strconv.Atoi(getEnv("SESSION_TTL_SECOND", "86400"))
	if err != nil {
		return
	}
	if ttlSecond <= 0 {
		return cfg, fmt.Errorf("SESSION_TTL_SECOND must be positive, got %d", ttlSecond)
	}
	cfg.SessionTTL = time.Duration(ttlSecond) * time.Second

	// Cookie config
	cfg.CookieName = getEnv("COOKIE_NAME", "recipe_session")
	cfg.CookieDomain = getEnv("COOKIE_DOMAIN", "")
	if cfg.CookieSecure, err = strconv.ParseBool(getEnv("COOKIE_SECURE", "false")); err != nil {
		return
	}

	// Upload config
	cfg.UploadDriver = getEnv("UPLOAD_DRIVER", driverDisk)
	switch cfg.UploadDriver {
	case driverDisk, driverS3:
	default:
		return cfg, fmt.Errorf("unknown UPLOAD_DRIVER %q", cfg.UploadDriver)
	}
	cfg.UploadDir = getEnv("UPLOAD_DIR", "uploads")
	if cfg.UploadMaxBytes, err = strconv.ParseInt(getEnv("UPLOAD_MAX_BYTES", "10485760"), 10, 64); err != nil {
		return
	}
	cfg.S3 = storage.S3Config{
		Region:     getEnv("S3_REGION", "us-east-1"),
		Endpoint:   getEnv("S3_ENDPOINT", ""),
		AccessKey:  getEnv("S3_ACCESS_KEY", ""),
		SecretKey:  getEnv("S3_SECRET_KEY", ""),
		Bucket:     getEnv("S3_BUCKET", "recipes"),
		PublicURL:  getEnv("S3_PUBLIC_URL", ""),
		PathPrefix: getEnv("S3_PATH_PREFIX", ""),
	}
	if cfg.UploadDriver == driverS3 && cfg.S3.PublicURL == "" {
		return cfg, fmt.Errorf("S3_PUBLIC_URL is required when UPLOAD_DRIVER=%s", driverS3)
	}

	// Kafka config
	for _, b := range strings.Split(getEnv("KAFKA_BROKERS", ""), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "recipes")

	return cfg, nil
}

// entityStores groups the user and recipe stores of the selected backend.
type entityStores struct {
	userReader   services.UserReader
	userWriter   services.UserWriter
	recipeReader services.RecipeReader
	recipeWriter services.RecipeWriter
}

// openEntityStores connects the configured entity store backend. The returned
// func releases its connections.
func openEntityStores(ctx context.Context, cfg config) (entityStores, func(), error) {
	switch cfg.StoreDriver {
	case driverPostgres:
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			cfg.PGUser, cfg.PGPassword, cfg.PGHost, cfg.PGPort, cfg.PGDB)
		logger.Log.Infow("Connecting to PostgreSQL", "host", cfg.PGHost, "port", cfg.PGPort, "db", cfg.PGDB)

		db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
		if err != nil {
			return entityStores{}, nil, fmt.Errorf("PostgreSQL connection error: %w", err)
		}
		db.SetMaxOpenConns(cfg.PGMaxOpenConns)
		db.SetMaxIdleConns(cfg.PGMaxIdleConns)

		if err := migrations.Up(ctx, db.DB); err != nil {
			db.Close()
			return entityStores{}, nil, fmt.Errorf("PostgreSQL migrations failed: %w", err)
		}

		return entityStores{
			userReader:   repositories.NewUserReadRepository(db),
			userWriter:   repositories.NewUserWriteRepository(db),
			recipeReader: repositories.NewRecipeReadRepository(db),
			recipeWriter: repositories.NewRecipeWriteRepository(db),
		}, func() { db.Close() }, nil

	case driverMongo:
		logger.Log.Infow("Connecting to MongoDB", "db", cfg.MongoDB)

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return entityStores{}, nil, fmt.Errorf("MongoDB connection error: %w", err)
		}
		closeClient := func() { client.Disconnect(context.Background()) }
		if err := client.Ping(ctx, nil); err != nil {
			closeClient()
			return entityStores{}, nil, fmt.Errorf("MongoDB ping failed: %w", err)
		}

		db := client.Database(cfg.MongoDB)
		users := repositories.NewMongoUserRepository(db)
		recipes := repositories.NewMongoRecipeRepository(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			closeClient()
			return entityStores{}, nil, fmt.Errorf("MongoDB user indexes: %w", err)
		}
		if err := recipes.EnsureIndexes(ctx); err != nil {
			closeClient()
			return entityStores{}, nil, fmt.Errorf("MongoDB recipe indexes: %w", err)
		}

		return entityStores{
			userReader:   users,
			userWriter:   users,
			recipeReader: recipes,
			recipeWriter: recipes,
		}, closeClient, nil

	default:
		logger.Log.Warnw("Using in-memory entity store, data is lost on restart")

		users := repositories.NewMemoryUserRepository()
		recipes := repositories.NewMemoryRecipeRepository(users)
		return entityStores{
			userReader:   users,
			userWriter:   users,
			recipeReader: recipes,
			recipeWriter: recipes,
		}, func() {}, nil
	}
}

// openSessionStore connects the configured session backend.
func openSessionStore(ctx context.Context, cfg config) (services.SessionStore, func(), error) {
	if cfg.SessionDriver == driverMemory {
		logger.Log.Warnw("Using in-memory session store, sessions are lost on restart")
		return repositories.NewMemorySessionRepository(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("Redis connection error: %w", err)
	}
	return repositories.NewSessionRedisRepository(rdb), func() { rdb.Close() }, nil
}

// openImageStore prepares the configured upload backend.
func openImageStore(ctx context.Context, cfg config) (services.ImageStore, error) {
	if cfg.UploadDriver == driverS3 {
		return storage.NewS3Store(ctx, cfg.S3)
	}
	return storage.NewDiskStore(cfg.UploadDir, uploadsPrefix)
}

// run initializes the logger, stores, session backend, broker and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg config) error {
	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFormat); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Log.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	stores, closeStores, err := openEntityStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	sessionStore, closeSessions, err := openSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	images, err := openImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	var kafkaWriter services.KafkaWriter
	if len(cfg.KafkaBrokers) > 0 {
		w := &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Topic:                  cfg.KafkaTopic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		}
		defer w.Close()
		kafkaWriter = w
		logger.Log.Infow("Kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	// Initialize session token signer
	tokens := jwt.New(jwt.WithSecretKey(cfg.SessionSecretKey), jwt.WithExpiration(cfg.SessionTTL))

	// Initialize services
	authService := services.NewAuthService(stores.userReader, stores.userWriter)
	sessionService := services.NewSessionService(sessionStore, stores.userReader, tokens, cfg.SessionTTL)
	recipeService := services.NewRecipeService(stores.recipeReader, stores.recipeWriter, images, kafkaWriter)

	view, err := views.New()
	if err != nil {
		return err
	}

	r := newRouter(routerDeps{
		auth:     authService,
		sessions: sessionService,
		recipes:  recipeService,
		view:     view,
		cookie:   cookies.New(cfg.CookieName, cfg.CookieDomain, cfg.CookieSecure),
		cfg:      cfg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", cfg.AppHost, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
