package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/deeplinker/pkg/app"
	"github.com/wadjakorntonsri/deeplinker/pkg/config"
	"github.com/wadjakorntonsri/deeplinker/pkg/logging"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	// The function is frozen once the response is written, so clicks are
	// stored before answering.
	cfg.RecordMode = "sync"

	// Note: On Vercel, db.sqlite is ephemeral unless using a remote SQL/Turso URL in DATABASE_URL
	if _, err := logging.Setup(cfg); err != nil {
		panic(err)
	}
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		panic(err)
	}
	mux = a.Handler
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
