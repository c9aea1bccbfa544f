package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/konkers/sdv-predict/internal/config"
	"github.com/konkers/sdv-predict/internal/game"
	"github.com/konkers/sdv-predict/internal/service"
	"github.com/konkers/sdv-predict/internal/store"
	"github.com/konkers/sdv-predict/internal/transport/grpcapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	strategy, err := cfg.Strategy()
	if err != nil {
		log.Fatal(err)
	}

	loader := game.NewLoader(cfg.DataDir, cfg.OverlayDir)
	tables, err := loader.Tables()
	if err != nil {
		log.Fatalf("load game data: %v", err)
	}
	p := &service.Predictor{Source: loader, Strategy: strategy}
	if cfg.WatchInterval == 0 {
		p.Source = game.Fixed{T: tables}
	}
	if cfg.DBPath != "" {
		archive, err := store.Open(cfg.DBPath)
		if err != nil {
			log.Fatalf("open archive: %v", err)
		}
		defer archive.Close()
		p.Archive = archive
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rpc *grpcapi.Listener
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatalf("listen on %s: %v", cfg.GRPCAddr, err)
		}
		rpc = grpcapi.New(lis, p)
		go func() {
			if err := rpc.Serve(ctx); err != nil {
				log.Printf("grpc: %v", err)
			}
		}()
	}

	if cfg.WatchInterval > 0 {
		w := game.NewFileWatcher(loader.WatchPaths(), cfg.WatchInterval, func(path string) {
			log.Printf("game data changed: %s", path)
			loader.Invalidate()
			_, err := loader.Tables()
			if err != nil {
				log.Printf("reload game data: %v", err)
			}
			if rpc != nil {
				rpc.SetServing(err == nil)
			}
		})
		go w.Run(ctx)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newMux(p),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s (strategy %s) ...", cfg.HTTPAddr, strategy.Name())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
