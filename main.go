package main

import (
	"context"
	"fmt"
	"os"

	"deskgate/auth"
	"deskgate/bootstrap"
	"deskgate/config"
	"deskgate/db"
	"deskgate/ui"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const appID = "io.deskgate.app"

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := mustBuildLogger(cfg.LogLevel)
	defer logger.Sync()

	myApp := app.NewWithID(appID)
	window := ui.NewShell(myApp, fyne.NewSize(cfg.WindowWidth, cfg.WindowHeight))

	newFlow := func(conn *db.DB) *ui.Flow {
		svc := auth.NewService(conn, logger.Named("auth"),
			auth.WithMinPasswordLength(cfg.MinPasswordLength))
		return ui.NewFlow(svc)
	}

	boot := &bootstrap.Bootstrap{
		Connect: func(ctx context.Context) (*db.DB, error) {
			return db.Connect(ctx, cfg.DatabasePath)
		},
		EmptyCheckTable: cfg.EmptyCheckTable,
		AdminSetup: func(conn *db.DB) bootstrap.Page {
			return newFlow(conn).AdminSetup()
		},
		UserLogin: func(conn *db.DB) bootstrap.Page {
			return newFlow(conn).UserLogin()
		},
		Logger: logger.Named("bootstrap"),
	}

	conn := boot.Run(context.Background(), window)
	defer conn.Close()

	window.ShowAndRun()
}

func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}
