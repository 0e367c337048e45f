package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/seeliang/google-cloud-engineering/config"
	"github.com/seeliang/google-cloud-engineering/pkg/logger"
	"github.com/seeliang/google-cloud-engineering/pkg/minio"
	"github.com/seeliang/google-cloud-engineering/pkg/vertex"
)

func main() {
	fs := flag.NewFlagSet("vertex-run", flag.ExitOnError)
	configPath := config.ParseConfigFlag(fs)
	envFile := fs.String("env", "", "dotenv file overlaying the process environment")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: vertex-run [flags] <config-json-path>")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	if err := config.Init(config.ResolvePath(*configPath)); err != nil {
		log.Fatal(err.Error())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx, span := otel.Tracer("vertex-run").Start(ctx, "run")

	logger, _ := logger.GetZapLogger(ctx)

	var env vertex.Env = vertex.OSEnv()
	if *envFile != "" {
		fileEnv, err := vertex.LoadEnvFile(*envFile)
		if err != nil {
			logger.Fatal(fmt.Sprintf("failed to load env file: %v", err))
		}
		// Variables already set in the process win, as with godotenv.Load.
		env = vertex.Overlay(fileEnv, env)
	}

	r := &runner{
		env:       env,
		factory:   vertex.DefaultClientFactory,
		logger:    logger,
		reportDir: config.Config.Report.Dir,
		now:       time.Now,
	}
	if mc := config.Config.Report.Minio; mc.Enabled() {
		storage, err := minio.NewStorage(ctx, mc, logger)
		if err != nil {
			logger.Fatal(fmt.Sprintf("failed to create minio client: %v", err))
		}
		r.uploader = storage
	}
	code := r.run(ctx, fs.Arg(0))

	span.End()
	cancel()
	// can't handle the error due to https://github.com/uber-go/zap/issues/880
	_ = logger.Sync()
	os.Exit(code)
}
