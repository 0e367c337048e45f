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
	"github.com/seeliang/google-cloud-engineering/pkg/analyzer"
	"github.com/seeliang/google-cloud-engineering/pkg/logger"
)

// defaultFunctionPort is the port the analyzer listens on when neither PORT
// nor a config file chooses one.
const defaultFunctionPort = 8080

func main() {
	fs := flag.NewFlagSet("analyzer", flag.ExitOnError)
	configPath := config.ParseConfigFlag(fs)
	_ = fs.Parse(os.Args[1:])

	if err := config.Init(config.ResolvePath(*configPath)); err != nil {
		log.Fatal(err.Error())
	}

	ctx, span := otel.Tracer("analyzer").Start(context.Background(), "main")

	logger, _ := logger.GetZapLogger(ctx)
	defer func() {
		// can't handle the error due to https://github.com/uber-go/zap/issues/880
		_ = logger.Sync()
	}()

	port := config.Config.Server.Port
	if _, ok := os.LookupEnv("PORT"); !ok && port == config.DefaultPort {
		port = defaultFunctionPort
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           analyzer.NewHandler(logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errSig := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errSig <- err
		}
	}()

	span.End()
	logger.Info(fmt.Sprintf("Text analyzer listening on :%d", port))

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
