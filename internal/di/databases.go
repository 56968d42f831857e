package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/hedgeflow/internal/config"
	"github.com/aristath/hedgeflow/internal/database"
)

// InitializeDatabases opens and migrates the market database.
// It is opened for every market data source since regime history always lives there.
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	marketDB, err := database.New(database.Config{
		Path:    cfg.DatabasePath(),
		Profile: database.ProfileStandard,
		Name:    "market",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open market database: %w", err)
	}

	if err := marketDB.Migrate(); err != nil {
		marketDB.Close()
		return nil, fmt.Errorf("failed to migrate market database: %w", err)
	}

	log.Info().Str("path", marketDB.Path()).Msg("Market database initialized")

	return &Container{MarketDB: marketDB}, nil
}
