package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"interchat/auth"
	"interchat/domain"
	"interchat/gateway"
	"interchat/observability"
	"interchat/runtime"
	"interchat/services"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Gateway terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern ensures deferred cleanup always executes before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Core assembly: registry -> chat service -> admission gate
	registry := runtime.NewRegistry()
	chatService := services.NewChatService(logger, registry)

	verifier := auth.NewHTTPVerifier(logger, config.IdentityBaseURL,
		&http.Client{Timeout: config.VerifierTimeout})
	authenticator := auth.NewAuthenticator(verifier, domain.DefaultCatalog())

	monitor := observability.NewMonitor(logger)

	server := gateway.NewServer(logger, authenticator, chatService, monitor,
		config.GatewayURI, config.BufferSize,
		config.DeliveryTimeout, config.HandshakeTimeout)

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Supervision: the stats reporter runs under the supervisor so a
	// panic in it never takes the gateway down.
	sup := runtime.NewSupervisor(logger)
	sup.Add(observability.NewReporter(monitor, config.MetricInterval))
	go sup.Run(ctx)

	// 5. HTTP server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:    address,
		Handler: server.Router(),
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting gateway", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 7. Graceful Shutdown
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return exitRuntime, fmt.Errorf("shutdown error: %w", err)
	}
	sup.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}
