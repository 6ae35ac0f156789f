package pkg

import (
	"context"
	"errors"
	"net"
	"net/http"

	"CollegeNoticeBoard/internal/auth"
	"CollegeNoticeBoard/internal/blob"
	"CollegeNoticeBoard/internal/config"
	"CollegeNoticeBoard/internal/directory"
	"CollegeNoticeBoard/internal/metrics"
	"CollegeNoticeBoard/internal/notice"
	"CollegeNoticeBoard/internal/views"
	"CollegeNoticeBoard/pkg/middleware"

	"github.com/labstack/echo/v4"
	"github.com/minio/minio-go/v7"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Modules expects a *config.ServerConfig and a *zap.Logger to be supplied.
var Modules = fx.Options(ConfigModules, NoticeModules, EchoModules)

var ConfigModules = fx.Module("config",
	fx.Provide(config.NewAuthConfig),
	fx.Provide(config.NewDirectoryConfig),
	fx.Provide(config.NewMongoDBConfig),
	fx.Provide(config.NewMongoDBClient),
	fx.Provide(config.NewMinioConfig),
	fx.Provide(config.NewMinioClient),
	fx.Provide(config.NewRedisConfig),
	fx.Provide(config.NewRedisClient),
	fx.Provide(metrics.NewRegistry),
	fx.Provide(metrics.New))

var NoticeModules = fx.Module("notices",
	fx.Provide(newNoticeStore),
	fx.Provide(newAttachments),
	fx.Provide(notice.NewValidator),
	fx.Provide(notice.NewNoticeService),
	fx.Provide(notice.NewFeed),
	fx.Provide(notice.NewNoticeHandler),
	fx.Provide(directory.NewUserRepository),
	fx.Provide(directory.NewNameCache),
	fx.Provide(newDirectory),
	fx.Provide(newViewStore),
	fx.Provide(newLedger),
	fx.Provide(newViewHandler))

var EchoModules = fx.Module("echo",
	fx.Provide(NewEchoServer),
	fx.Provide(middleware.NewRBAC),
	fx.Provide(auth.NewAuthHandler),
	fx.Invoke(RegisterRoutes))

func newNoticeStore(lc fx.Lifecycle, db *mongo.Database) notice.Store {
	repo := notice.NewNoticeRepository(db)
	lc.Append(fx.Hook{OnStart: repo.EnsureIndexes})
	return repo
}

func newViewStore(lc fx.Lifecycle, db *mongo.Database) views.Store {
	repo := views.NewViewRepository(db)
	lc.Append(fx.Hook{OnStart: repo.EnsureIndexes})
	return repo
}

func newAttachments(lc fx.Lifecycle, client *minio.Client, cfg *config.MinioConfig, logger *zap.Logger) notice.Attachments {
	store := blob.NewStore(client, cfg.Bucket, cfg.PublicURL, logger)
	lc.Append(fx.Hook{OnStart: store.EnsureBucket})
	return store
}

func newDirectory(users *directory.UserRepository, cache *directory.NameCache, cfg *config.DirectoryConfig, m *metrics.Metrics, logger *zap.Logger) views.Directory {
	return directory.NewService(users, cache, cfg, m, logger)
}

func newLedger(s views.Store, feed *notice.Feed, dir views.Directory, m *metrics.Metrics, logger *zap.Logger) *views.Ledger {
	return views.NewLedger(s, feed, dir, m, logger)
}

func newViewHandler(ledger *views.Ledger, notices *notice.NoticeService, logger *zap.Logger) *views.ViewHandler {
	return views.NewViewHandler(ledger, notices, logger)
}

func NewEchoServer(lc fx.Lifecycle, cfg *config.ServerConfig, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	middleware.SetupMiddleware(e, cfg, logger)

	// Cancelled on stop so open event streams end before Shutdown waits on them.
	base, cancel := context.WithCancel(context.Background())
	e.Server.BaseContext = func(net.Listener) context.Context { return base }

	log := logger.Named("server")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("Failed to start the server", zap.Error(err))
				}
			}()
			log.Info("Server running", zap.String("addr", cfg.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down the server")
			cancel()
			return e.Shutdown(ctx)
		},
	})
	return e
}

type RouteParams struct {
	fx.In

	Echo        *echo.Echo
	Auth        *config.AuthConfig
	RBAC        *middleware.RBAC
	Metrics     *metrics.Metrics
	AuthHandler *auth.AuthHandler
	Notices     *notice.NoticeHandler
	Views       *views.ViewHandler
}

func RegisterRoutes(p RouteParams) {
	p.Echo.GET("/metrics", echo.WrapHandler(p.Metrics.Handler()))

	protected := p.Echo.Group("/api")
	protected.Use(middleware.JWTMiddleware(p.Auth.JWTKey), p.RBAC.Middleware)
	protected.GET("/profile", p.AuthHandler.Profile)

	protected.GET("/notices", p.Notices.List)
	protected.GET("/notices/stream", p.Notices.Stream)
	protected.POST("/notices", p.Notices.Create)
	protected.GET("/notices/:id", p.Notices.Get)
	protected.PUT("/notices/:id", p.Notices.Update)
	protected.DELETE("/notices/:id", p.Notices.Delete)
	protected.GET("/notices/:id/stream", p.Views.Stream)
	protected.GET("/notices/:id/views", p.Views.List)
	protected.POST("/notices/:id/views", p.Views.Record)

	protected.GET("/stats", p.Notices.Stats)
}
