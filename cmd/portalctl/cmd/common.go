package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/northwind/salesportal/internal/app"
	"github.com/northwind/salesportal/internal/config"
	"github.com/northwind/salesportal/internal/logger"
)

// loadConfig reads the server's environment. Logs go to stderr so command
// output on stdout stays scriptable.
func loadConfig() *config.Config {
	cfg := config.Load()
	slog.SetDefault(logger.New(os.Stderr, cfg.IsDevelopment()))
	return cfg
}

// openApp builds the same container the server uses, so commands act on
// exactly the store and bucket the server is configured for.
func openApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, loadConfig())
}
