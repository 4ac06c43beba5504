package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gridstat/adapters/api"
	"gridstat/adapters/excel"
	"gridstat/adapters/postgres"
	"gridstat/adapters/stats/engine"
	"gridstat/internal"
	"gridstat/internal/config"
	"gridstat/ports"
)

func main() {
	godotenv.Load()
	logger := internal.NewDefaultLogger("main")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading configuration: %v", err)
		os.Exit(1)
	}
	if cfg.Data.FilePath == "" {
		logger.Error("DATA_FILE must point at a CSV or XLSX table")
		os.Exit(1)
	}

	table, err := excel.NewTableReader(cfg.Data.MaxRows).Read(cfg.Data.FilePath)
	if err != nil {
		logger.Error("loading table: %v", err)
		os.Exit(1)
	}

	var repo ports.ResultRepository
	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pg, err := postgres.Connect(ctx, cfg.Database.URL)
		cancel()
		if err != nil {
			logger.Error("connecting result store: %v", err)
			os.Exit(1)
		}
		defer pg.Close()
		repo = pg
	} else {
		logger.Warn("DATABASE_URL not set, results will not be persisted")
	}

	server := api.NewServer(table, engine.NewStatsEngine(), repo)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("listening on :%s, dataset %s (%d variables, %d cases)",
			cfg.Server.Port, table.Name, table.ColumnCount(), table.RowCount())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown: %v", err)
	}
}
