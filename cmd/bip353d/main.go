package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lc/bip353/internal/config"
	"github.com/lc/bip353/internal/dnsresolver"
	"github.com/lc/bip353/internal/engine"
	"github.com/lc/bip353/internal/log"
	"github.com/lc/bip353/pkg/api"
	"github.com/lc/bip353/pkg/bip353"
)

func main() {
	// load config
	cfg, err := config.New().Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// build deps
	dnsClient := dnsresolver.New(cfg.DNS.Timeout,
		dnsresolver.WithResolvers(cfg.DNS.Resolvers),
		dnsresolver.WithRetries(cfg.DNS.Retries),
	)
	resolver := bip353.NewResolver(dnsClient)
	eng := engine.New(resolver)

	// start the api over unix socket
	apiSrv := api.New(eng)
	sockPath := cfg.Socket.Path

	go func() {
		log.Infof("listening on %s", sockPath)
		if err := apiSrv.ListenAndServe(sockPath); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("api listen: %v", err)
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	<-sig
	log.Info("shutting down…")

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()

	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("api shutdown error: %v", err)
	}
}
