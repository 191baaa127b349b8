package bootstrap

import (
	"fmt"

	coreconfig "github.com/kariosv/collinsbot/core/config"
	"github.com/kariosv/collinsbot/core/logger"
	"github.com/kariosv/collinsbot/internal/storage"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	OpenStore  func(dir string) (*storage.Store, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	Store *storage.Store
}

// Run initializes the logger and opens the durable record store.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	openStore := opts.OpenStore
	if openStore == nil {
		openStore = storage.Open
	}
	store, err := openStore(opts.Config.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: store initialization failed: %w", err)
	}

	return &Result{Store: store}, nil
}
