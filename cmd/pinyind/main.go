// main package for the pinyin decode service
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/book-expert/logger"
	pinyin "github.com/ieee0824/pinyin-go"
	"github.com/ieee0824/pinyin-go/internal/config"
	"github.com/ieee0824/pinyin-go/internal/objectstore"
	"github.com/ieee0824/pinyin-go/internal/worker"
	"github.com/ieee0824/pinyin-go/language"
	"github.com/nats-io/nats.go"
)

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "pinyind.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func loadConfig(path string, log *logger.Logger) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}

	return config.Load(log)
}

// loadModel reads the model from the object store when fromStore is set and
// from the local documents otherwise.
func loadModel(ctx context.Context, cfg *config.Config, js nats.JetStreamContext, fromStore bool) (*language.Model, error) {
	if !fromStore {
		return language.LoadFiles(cfg.Model.UnigramPath, cfg.Model.BigramPath)
	}

	store, err := objectstore.New(js, cfg.NATS.ModelStoreBucket)
	if err != nil {
		return nil, err
	}

	return pinyin.LoadModelFromStore(ctx, store, cfg.NATS.UnigramKey, cfg.NATS.BigramKey)
}

func run(configPath string, fromStore bool) error {
	// 1. Bootstrap logger until the configured log directory is known
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	defer bootstrapLog.Close()

	// 2. Configuration
	cfg, err := loadConfig(configPath, bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 3. Final logger
	log, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return err
	}

	defer func() {
		closeErr := log.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. NATS
	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		return fmt.Errorf("failed to get JetStream context: %w", err)
	}

	// 5. Model and converter
	model, err := loadModel(ctx, cfg, jetstreamContext, fromStore)
	if err != nil {
		log.Error("Failed to load model: %v", err)

		return fmt.Errorf("failed to load model: %w", err)
	}

	decCfg, err := cfg.DecoderConfig()
	if err != nil {
		return err
	}

	converter, err := pinyin.NewConverterFromModel(model, pinyin.WithDecoderConfig(decCfg))
	if err != nil {
		return err
	}

	log.System("Pinyin service initialized (%s). Listening on subject: %s", converter, cfg.NATS.DecodeSubject)

	// 6. Serve until interrupted
	w, err := worker.NewNatsWorker(natsConnection, cfg.NATS.DecodeSubject, converter, log)
	if err != nil {
		return err
	}

	err = w.Run(ctx)
	if err != nil {
		return err
	}

	log.System("Pinyin service stopped.")

	return nil
}

func main() {
	configPath := flag.String("config", "", "TOML or YAML config file (default: central configurator)")
	fromStore := flag.Bool("from-store", false, "load the model from the NATS object store")
	flag.Parse()

	err := run(*configPath, *fromStore)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
