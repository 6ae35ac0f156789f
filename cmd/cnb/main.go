package main

import (
	"log"

	"CollegeNoticeBoard/internal/bootstrap"
	"CollegeNoticeBoard/internal/config"
	pkg "CollegeNoticeBoard/pkg/routes"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	loaded, err := bootstrap.Loadenv()
	if err != nil {
		log.Fatalf("Failed to read .env: %v", err)
	}

	serverConfig := config.NewServerConfig()
	logger, err := config.NewLogger(serverConfig)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	if !loaded {
		logger.Info("No .env file found, using system environment variables")
	}

	app := fx.New(
		fx.Supply(serverConfig, logger),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
		pkg.Modules,
	)

	app.Run()
}
