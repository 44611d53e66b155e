package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"github.com/wadjakorntonsri/deeplinker/pkg/app"
	"github.com/wadjakorntonsri/deeplinker/pkg/config"
	"github.com/wadjakorntonsri/deeplinker/pkg/logging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()

	flush, err := logging.Setup(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		flush()
		log.Fatalf("Failed to start: %v", err)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				if err := server.Shutdown(ctx); err != nil {
					return err
				}
				// in-flight redirects may have queued clicks
				return a.Close(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Server exited with code: %d", exitCode)
	flush()
	os.Exit(exitCode)
}
