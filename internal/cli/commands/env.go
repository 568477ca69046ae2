package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/listatree/hypothesis/internal/backend"
	"github.com/listatree/hypothesis/internal/cli/config"
	"github.com/listatree/hypothesis/internal/cli/ui"
	"github.com/listatree/hypothesis/internal/database"
	"github.com/listatree/hypothesis/internal/descriptor"
	"github.com/listatree/hypothesis/internal/value"
)

// errReported marks an error whose message was already written
var errReported = errors.New("error already reported")

// session is an open example database with the configuration it came from
type session struct {
	cfg    *config.Config
	db     *database.ExampleDatabase
	logger *zap.Logger
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.LoadFile(configFileFlag)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), nil, noColorFlag))
		return nil, fmt.Errorf("%w: %v", errReported, err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	b, err := backend.Open(cfg.BackendConfig())
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Backend.Type, err)
	}
	logger.Debug("opened backend", zap.String("type", cfg.Backend.Type))

	return &session{
		cfg:    cfg,
		db:     database.New(database.Config{Backend: b, Logger: logger}),
		logger: logger,
	}, nil
}

func (s *session) Close() error {
	defer s.logger.Sync()
	return s.db.Close()
}

func (s *session) storage(cmd *cobra.Command, src string) (*database.Storage, error) {
	d, err := descriptor.Parse(src)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ParseError("descriptor", src, err, noColorFlag))
		return nil, fmt.Errorf("%w: %v", errReported, err)
	}
	return s.db.StorageFor(d)
}

func parseValue(cmd *cobra.Command, src string) (any, error) {
	v, err := value.Parse(src)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ParseError("value", src, err, noColorFlag))
		return nil, fmt.Errorf("%w: %v", errReported, err)
	}
	return v, nil
}
