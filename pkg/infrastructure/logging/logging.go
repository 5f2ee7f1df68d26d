package logging

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/bomcost/pkg/infrastructure/config"
)

// New builds a logger from configuration: JSON production output or a
// human-readable development console. Logs go to stderr.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = level

	return zapCfg.Build()
}
