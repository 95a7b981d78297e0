package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/idorlab/internal/metrics"
	"github.com/hitoshi/idorlab/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// プロフィール・一覧
	ProfileService ProfileServiceInterface

	// トークン
	TokenIssuer  TokenIssuerInterface
	DemoUserID   int64
	ClientConfig ClientConfig

	// 運用
	HealthChecker    HealthChecker
	MetricsHandler   http.Handler
	DebugDumpEnabled bool
	DebugDumpPath    string
	StaticDir        string
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → RequestID → Recovery → Logging → SecurityHeaders → CORS
//
// /api/* にのみクライアントIP単位のレート制限を追加する。
// デバッグダンプは有効化された場合にのみ登録し、どこからもリンクしない。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewLoggingMiddleware(logger, deps.Metrics))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	profileHandler := NewProfileHandler(deps.ProfileService)
	tokenHandler := NewTokenHandler(deps.TokenIssuer, deps.DemoUserID, deps.ClientConfig)

	// --- 運用ルート ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
	if deps.DebugDumpEnabled && deps.DebugDumpPath != "" {
		r.Get(deps.DebugDumpPath, profileHandler.DumpUsers)
		logger.Warn("debug dump endpoint enabled", slog.String("path", deps.DebugDumpPath))
	}

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		r.Get("/token", tokenHandler.IssueToken)
		r.Get("/client-config", tokenHandler.ClientConfig)
		r.Get("/users", profileHandler.ListUsers)
		r.Get("/profile/{id}", profileHandler.GetProfile)
	})

	// --- 静的ファイル ---
	if deps.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(deps.StaticDir)))
	}

	return r
}
