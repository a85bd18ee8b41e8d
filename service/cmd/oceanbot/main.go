// cmd/oceanbot/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/CodeIngame/OceanOfCode/service/internal/bot"
	"github.com/CodeIngame/OceanOfCode/service/internal/cache"
	"github.com/CodeIngame/OceanOfCode/service/internal/config"
	"github.com/CodeIngame/OceanOfCode/service/internal/database"
	"github.com/CodeIngame/OceanOfCode/service/internal/protocol"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "oceanbot: %v\n", err)
		os.Exit(2)
	}
	// stdout carries the protocol; logs go to stderr.
	log, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "oceanbot: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Error("oceanbot stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	conn, err := openTransport(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	rec, err := openRecorder(ctx, cfg)
	if err != nil {
		return err
	}
	if rec != nil {
		defer rec.Close()
		log.Infof("Recording matches to %s", cfg.Recorder)
	}

	r := &bot.Runner{Log: log, Rules: cfg.Rules, Recorder: rec}
	return r.Run(ctx, conn)
}

func openTransport(ctx context.Context, cfg *config.Config) (protocol.LineConn, error) {
	if cfg.Transport == config.TransportWebsocket {
		return protocol.DialWS(ctx, cfg.WSURL)
	}
	return protocol.NewStdioConn(os.Stdin, os.Stdout), nil
}

// openRecorder returns nil when recording is disabled.
func openRecorder(ctx context.Context, cfg *config.Config) (bot.Recorder, error) {
	switch cfg.Recorder {
	case config.RecorderSQLite:
		return database.Open(ctx, database.SQLite, cfg.RecorderDSN)
	case config.RecorderPostgres:
		return database.Open(ctx, database.Postgres, cfg.RecorderDSN)
	case config.RecorderRedis:
		return cache.Open(ctx, cfg.RedisAddr, cfg.RedisTTL)
	}
	return nil, nil
}
