// Command skyd runs the Sky server against a data directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/skydb/sky/block"
	"github.com/skydb/sky/database"
	"github.com/skydb/sky/server"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	dataDir := flag.String("data-dir", "", "path to the data directory (required)")
	port := flag.Int("port", server.DefaultPort, "TCP port to listen on")
	flag.Parse()

	if *dataDir == "" {
		fmt.Fprintln(os.Stderr, "skyd: -data-dir is required")

		return 1
	}

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "skyd: create logger: %v\n", err)

		return 1
	}
	defer log.Sync() //nolint:errcheck

	manager := database.NewManager(*dataDir, block.DefaultConfig(), log)
	defer manager.Close()

	srv := server.New(manager, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.ListenAndServe(fmt.Sprintf(":%d", *port))
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped", zap.Error(err))

			return 1
		}
	case <-ctx.Done():
		log.Info("shutting down")

		if err := srv.Close(); err != nil {
			log.Error("shutdown error", zap.Error(err))

			return 1
		}

		<-errCh
	}

	return 0
}
