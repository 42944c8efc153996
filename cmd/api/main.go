package main

import (
	"context"
	"expvar"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"viniloteca/internal/auth"
	"viniloteca/internal/db"
	"viniloteca/internal/domain/storage"
	"viniloteca/internal/filestore"
	"viniloteca/internal/metrics"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	level := zapcore.InfoLevel

	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	logger := zap.New(core)

	return logger.Sugar(), nil
}

var version = "1.0.0"

//	@title			Viniloteca API
//	@description	Accounts, profiles, record stores and store reviews for the Viniloteca mobile app.

//	@contact.name	API Support

//	@BasePath					/
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "apply database migrations and exit")
	flag.Parse()

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Infow("no .env file loaded, using process environment", "error", err)
	}

	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		logger.Fatalw("invalid configuration", "error", err)
	}

	// Schema changes are applied before any connection serves traffic.
	schemaVersion, err := db.RunMigrations(cfg.db.addr)
	if err != nil {
		logger.Fatal(err)
	}
	logger.Infow("database schema is up to date", "version", schemaVersion)

	if *migrateOnly {
		return
	}

	pool, err := db.New(
		cfg.db.addr,
		int32(cfg.db.maxOpenConns),
		cfg.db.maxIdleTime,
	)
	if err != nil {
		logger.Fatal(err)
	}
	logger.Info("database connection pool established")

	store := storage.NewContainer(pool)

	var files filestore.Store
	switch cfg.files.backend {
	case fileBackendCloudinary:
		files, err = filestore.NewCloudinary(cfg.files.cloudinaryURL, "profile_pictures")
	default:
		files, err = filestore.NewLocal(cfg.files.uploadDir, cfg.apiURL)
	}
	if err != nil {
		logger.Fatal(err)
	}

	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.iss,
		cfg.auth.token.iss,
		cfg.auth.token.exp,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &application{
		config:        cfg,
		logger:        logger,
		store:         store,
		ledger:        store.Ledger(cfg.ratings),
		files:         files,
		authenticator: jwtAuthenticator,
		metrics:       metrics.NewCollector(registry),
		gatherer:      registry,
	}

	// Metrics collected at /debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		s := pool.Stat()
		return map[string]int32{
			"total_conns":    s.TotalConns(),
			"idle_conns":     s.IdleConns(),
			"acquired_conns": s.AcquiredConns(),
			"max_conns":      s.MaxConns(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = app.run(ctx, mux)
	pool.Close()
	if err != nil {
		logger.Fatalw("server stopped with error", "error", err)
	}
}
