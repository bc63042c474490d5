// Package status exposes the operational surfaces of the engine: cache
// statistics, local quota state, and proxy rotation state.
package status

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/placemetrics/rankengine/internal/analyze"
	"github.com/placemetrics/rankengine/models"
)

func newService(c *cli.Context) (*analyze.Service, error) {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return analyze.NewService(cfg, logger)
}

// StatusAction handles `rankengine status`.
func StatusAction(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	data, err := json.MarshalIndent(svc.Status(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// CacheClearAction handles `rankengine cache clear`.
func CacheClearAction(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	fmt.Printf("removed %d cache entries\n", svc.ClearCaches())
	return nil
}

// CacheCleanupAction handles `rankengine cache cleanup`.
func CacheCleanupAction(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	fmt.Printf("removed %d expired cache entries\n", svc.CleanupCaches())
	return nil
}

// ProxiesResetAction handles `rankengine proxies reset`.
func ProxiesResetAction(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	svc.ResetProxies()
	fmt.Println("proxy rotation and global backoff reset")
	return nil
}
