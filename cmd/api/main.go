// Package main provides the entry point for the Brainly server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/brainlyapp/brainly-server/internal/di"
	"github.com/brainlyapp/brainly-server/internal/logger"
)

func main() {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		_ = injector.Shutdown()
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)
	log.Info("Server running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info("Shutting down server gracefully...", "signal", sig.String())

	// The container shuts services down in reverse dependency order:
	// HTTP server and mDNS first, then services, search index and store.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped")
}
