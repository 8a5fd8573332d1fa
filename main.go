package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/danielhkuo/tokichan/captcha"
	"github.com/danielhkuo/tokichan/cliparse"
	"github.com/danielhkuo/tokichan/db"
	"github.com/danielhkuo/tokichan/logging"
	"github.com/danielhkuo/tokichan/middleware"
	"github.com/danielhkuo/tokichan/router"
	"github.com/danielhkuo/tokichan/upload"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logger, err := logging.Setup(os.Stdout, cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		slog.Error("Error setting up logging", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables) and configured boards
	if err := db.CreateSchema(dbConn, cfg.DatabaseType); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	if err := db.SeedBoards(dbConn, cfg.Boards); err != nil {
		slog.Error("board seeding failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType, "boards", len(cfg.Boards))

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("upload storage failed", "storage", cfg.Storage, "error", err)
		os.Exit(1)
	}

	// Render the first challenge pool before accepting requests
	renderer, err := captcha.NewImageRenderer(cfg.CaptchaWidth, cfg.CaptchaHeight)
	if err != nil {
		slog.Error("captcha renderer failed", "error", err)
		os.Exit(1)
	}
	challenges, err := captcha.New(captcha.Config{
		PoolSize: cfg.CaptchaPoolSize,
		Interval: cfg.CaptchaInterval,
		Length:   cfg.CaptchaLength,
		Alphabet: captcha.DefaultAlphabet,
	}, renderer)
	if err != nil {
		slog.Error("captcha pool failed", "error", err)
		os.Exit(1)
	}
	go challenges.Run(ctx)

	// Create router
	mux := router.NewRouter(dbConn, cfg, store, challenges)

	// Create server
	server := http.Server{
		Handler:           middleware.Recover(middleware.CORS(mux)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	idle := make(chan struct{})
	go func() {
		defer close(idle)
		// Wait for Ctrl-C signal
		<-ctrlc
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "storage", cfg.Storage)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
		return
	}
	<-idle
	slog.Info("Server closed", "error", err)
}

func openStore(ctx context.Context, cfg cliparse.Config) (upload.Store, error) {
	if cfg.Storage == cliparse.StorageMinio {
		return upload.NewMinioStore(ctx, upload.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	}
	return upload.NewFSStore(afero.NewOsFs(), cfg.UploadDir)
}
