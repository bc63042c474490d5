package analyze

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/placemetrics/rankengine/models"
	"github.com/placemetrics/rankengine/pkg/session"
	"github.com/placemetrics/rankengine/pkg/storage"
)

func newLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

func loadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ResolveAction handles `rankengine resolve --place ... --keyword ...`.
func ResolveAction(c *cli.Context) error {
	logger := newLogger(c)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	place := c.String("place")
	keyword := c.String("keyword")
	if place == "" || keyword == "" {
		return fmt.Errorf("both --place and --keyword are required")
	}

	svc, err := NewService(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	result, err := svc.Resolve(c.Context, place, keyword, Options{
		ForceRefresh: c.Bool("force-refresh"),
		Deep:         c.Bool("deep"),
		TrafficCount: c.Int("traffic"),
	})
	if err != nil {
		return err
	}

	if out := c.String("out"); out != "" {
		out = snapshotPath(out, c.String("format"), result)
		s := &storage.Storage{}
		if err := s.SaveSnapshot(out, result); err != nil {
			logger.Warn("failed to save snapshot", "path", out, "error", err)
		} else {
			logger.Info("snapshot saved", "path", out)
		}
	}

	return printResult(result, c.String("format"))
}

// snapshotPath resolves --out to a concrete file path. A directory gets a
// run-derived file name so repeated resolves do not overwrite each other.
func snapshotPath(out, format string, result *models.ResolveResult) string {
	info, err := os.Stat(out)
	isDir := err == nil && info.IsDir()
	if !isDir && !strings.HasSuffix(out, string(os.PathSeparator)) {
		return out
	}
	ext := "json"
	if format == "yaml" {
		ext = "yaml"
	}
	run := session.Run{ID: result.RunID, StartedAt: result.CollectedAt}
	return filepath.Join(out, run.SnapshotName(ext))
}

func printResult(v any, format string) error {
	var (
		data []byte
		err  error
	)
	if format == "yaml" {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
