package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/idorlab/internal/config"
	"github.com/hitoshi/idorlab/internal/database"
	"github.com/hitoshi/idorlab/internal/handler"
	"github.com/hitoshi/idorlab/internal/logger"
	"github.com/hitoshi/idorlab/internal/metrics"
	"github.com/hitoshi/idorlab/internal/middleware"
	"github.com/hitoshi/idorlab/internal/profile"
	"github.com/hitoshi/idorlab/internal/repository"
	"github.com/hitoshi/idorlab/internal/security"
	"github.com/hitoshi/idorlab/internal/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再初期化
	logger.SetupDefault(w, cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	if !cmd.NeedsConfig() {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(fmt.Sprintf("http://localhost:%s/health", port))
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
		slog.String("auth_mode", cfg.AuthMode),
		slog.String("store_driver", cfg.StoreDriver),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router, cleanup, err := buildRouter(ctx, cfg, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer cleanup()

	return serve(ctx, ":"+cfg.ServerPort, router)
}

// serve はHTTPサーバーを起動し、ctxがキャンセルされるまでブロックする。
func serve(ctx context.Context, addr string, h http.Handler) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// buildRouter は設定から全依存関係をワイヤリングしたルーターを返す。
// 返されるcleanupでストア接続とレートリミッターを解放する。
func buildRouter(ctx context.Context, cfg *config.Config, reg *prometheus.Registry) (http.Handler, func(), error) {
	// 1. ストアの初期化
	repo, closeRepo, err := openUserRepository(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// 2. メトリクスの初期化
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 3. トークンと認可の初期化
	codec := token.NewCodec([]byte(cfg.TokenSecret))
	mode := profile.AuthMode(cfg.AuthMode)
	authorizer, err := profile.NewAuthorizer(mode, codec, collector)
	if err != nil {
		closeRepo()
		return nil, nil, err
	}

	// 4. ドメインサービスの初期化
	profileService := profile.NewService(repo, authorizer, security.NewTextSanitizer(), collector, profile.ServiceConfig{
		PrivilegedUserID: cfg.PrivilegedUserID,
		DirectoryMode:    profile.DirectoryMode(cfg.DirectoryMode),
		BioPreviewLength: cfg.BioPreviewLength,
	})
	issuer := profile.NewIssuer(repo, codec, collector, profile.IssuerConfig{
		Mode:    mode,
		TTL:     cfg.TokenTTL,
		BaseURL: cfg.BaseURL,
	})

	if cfg.TokenSecret == config.DefaultTokenSecret {
		slog.Warn("using the default token secret; it is published at /api/client-config")
	}

	// 5. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitGeneral))

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		Metrics:           collector,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,

		ProfileService: profileService,

		TokenIssuer: issuer,
		DemoUserID:  cfg.DemoUserID,
		ClientConfig: handler.ClientConfig{
			AuthMode:         cfg.AuthMode,
			TokenSecret:      cfg.TokenSecret,
			PrivilegedUserID: cfg.PrivilegedUserID,
		},

		HealthChecker:    repo,
		MetricsHandler:   metrics.Handler(reg),
		DebugDumpEnabled: cfg.DebugDumpEnabled,
		DebugDumpPath:    cfg.DebugDumpPath,
		StaticDir:        cfg.StaticDir,
	})

	cleanup := func() {
		rateLimiter.Stop()
		closeRepo()
	}
	return router, cleanup, nil
}

// openUserRepository はSTORE_DRIVERに応じたユーザーストアを開く。
// Postgresの場合は起動直後のDB未準備に備えて疎通確認をリトライする。
func openUserRepository(ctx context.Context, cfg *config.Config) (repository.UserRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := database.WaitForDB(ctx, db, database.DefaultRetryConfig(cfg.DBConnectAttempts)); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		slog.Info("database connection established",
			slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		)
		return repository.NewPostgresUserRepo(db), closeDB(db), nil

	default:
		source := cfg.UsersFile
		if source == "" {
			source = "embedded seed"
		}
		slog.Info("using file user store", slog.String("source", source))
		return repository.OpenFileUserRepo(cfg.UsersFile), func() {}, nil
	}
}

func closeDB(db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close database", slog.String("error", err.Error()))
		}
	}
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return errors.New("migrate requires DATABASE_URL")
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(target string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
