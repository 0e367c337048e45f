package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/seeliang/google-cloud-engineering/config"
	"github.com/seeliang/google-cloud-engineering/pkg/aistudio"
	"github.com/seeliang/google-cloud-engineering/pkg/logger"
	"github.com/seeliang/google-cloud-engineering/pkg/vertex"
)

func main() {
	fs := flag.NewFlagSet("aistudio", flag.ExitOnError)
	configPath := config.ParseConfigFlag(fs)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: aistudio [flags] [prompt...]")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	if err := config.Init(config.ResolvePath(*configPath)); err != nil {
		log.Fatal(err.Error())
	}

	ctx, span := otel.Tracer("aistudio").Start(context.Background(), "generate")
	defer span.End()

	logger, _ := logger.GetZapLogger(ctx)
	defer func() {
		// can't handle the error due to https://github.com/uber-go/zap/issues/880
		_ = logger.Sync()
	}()

	env := vertex.OSEnv()
	cwd, err := os.Getwd()
	if err != nil {
		logger.Fatal(fmt.Sprintf("failed to resolve working directory: %v", err))
	}

	cfg, err := aistudio.LoadConfig(env, cwd)
	if err != nil {
		logger.Fatal(err.Error())
	}

	_, ci := env.Lookup("CI")
	_, err = aistudio.Run(ctx, aistudio.NewClient(cfg, nil), logger, aistudio.RunOptions{
		Prompt:     strings.TrimSpace(strings.Join(fs.Args(), " ")),
		OutputPath: cfg.OutputPath,
		Strict:     ci,
	})
	if err != nil {
		logger.Fatal(err.Error())
	}
}
