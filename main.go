package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go-image-labeler/labeling"
	"go-image-labeler/logging"
)

const (
	modeAuto   = "auto"
	modeLambda = "lambda"
	modeServer = "server"
)

func main() {
	configPath := flag.String("config", "", "Path for the config.json to use (optional, falls back to $LABELER_CONFIG)")
	mode := flag.String("mode", modeAuto, "Run mode: auto, lambda or server")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("LABELER_CONFIG")
	}

	config, err := loadConfig(path)
	if err != nil {
		fatal("failed to read config file", err)
	}
	logging.InitLoggerWithFormat(config.LogLevel, config.LogFormat, os.Stderr)
	slog.Info("Using config", "path", path, "detector_type", config.DetectorType)

	runMode, err := resolveMode(*mode, os.Getenv)
	if err != nil {
		fatal("invalid run mode", err)
	}

	labelDetector, err := createDetector(context.Background(), &config)
	if err != nil {
		fatal("failed to instantiate label detector", err)
	}
	if closer, ok := labelDetector.(io.Closer); ok {
		defer closer.Close()
	}

	handler := labeling.NewHandler(labelDetector, labeling.WithDetectorOptions(config.DetectorOptions()))

	if runMode == modeLambda {
		slog.Info("Starting lambda handler")
		startLambda(handler)
		return
	}

	server, err := NewServer(handler, labelDetector, config.ServerConfig)
	if err != nil {
		fatal("failed to create server", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = server.Stop()
	}()

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatal("failed to listen and serve", err)
	}
}

// resolveMode picks lambda when running inside the Lambda runtime.
func resolveMode(mode string, getenv func(string) string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case modeAuto, "":
		if getenv("AWS_LAMBDA_RUNTIME_API") != "" {
			return modeLambda, nil
		}
		return modeServer, nil
	case modeLambda:
		return modeLambda, nil
	case modeServer:
		return modeServer, nil
	default:
		return "", fmt.Errorf("%v is not a valid mode", mode)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
