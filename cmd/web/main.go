package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/seeliang/google-cloud-engineering/config"
	"github.com/seeliang/google-cloud-engineering/pkg/logger"
	"github.com/seeliang/google-cloud-engineering/pkg/web"
)

func main() {
	fs := flag.NewFlagSet("web", flag.ExitOnError)
	configPath := config.ParseConfigFlag(fs)
	_ = fs.Parse(os.Args[1:])

	if err := config.Init(config.ResolvePath(*configPath)); err != nil {
		log.Fatal(err.Error())
	}

	ctx, span := otel.Tracer("web").Start(context.Background(), "main")

	logger, _ := logger.GetZapLogger(ctx)
	defer func() {
		// can't handle the error due to https://github.com/uber-go/zap/issues/880
		_ = logger.Sync()
	}()

	functionURL := config.Config.FunctionURL()
	forwarder := web.NewForwarder(functionURL)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Config.Server.Port),
		Handler:           web.NewServer(forwarder, functionURL, logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errSig := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errSig <- err
		}
	}()

	span.End()
	logger.Info(fmt.Sprintf("Proxy listening on http://localhost:%d", config.Config.Server.Port))
	logger.Info(fmt.Sprintf("Forwarding requests to %s", functionURL))

	quitSig := make(chan os.Signal, 1)
	signal.Notify(quitSig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errSig:
		logger.Error(fmt.Sprintf("Fatal error: %v", err))
	case <-quitSig:
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(fmt.Sprintf("server shutdown: %v", err))
		}
	}
}
