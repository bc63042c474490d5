package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/placemetrics/rankengine/internal/analyze"
	"github.com/placemetrics/rankengine/internal/status"
	"github.com/placemetrics/rankengine/models"
	"github.com/placemetrics/rankengine/pkg/storage"
)

func main() {
	// Proxy credentials and overrides come from the environment; a missing
	// .env file is fine.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "rankengine",
		Usage: "local search rank analysis and gap planning",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "rankengine.yaml",
				Usage: "path to the YAML config file",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "only log errors",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "resolve",
				Usage:  "resolve a place's rank for a keyword and plan how to close the gap to #1",
				Action: analyze.ResolveAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "place",
						Usage:    "place id or place URL",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "keyword",
						Usage:    "search keyword",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "force-refresh",
						Usage: "bypass the per-keyword search cache",
					},
					&cli.BoolFlag{
						Name:  "deep",
						Usage: "collect the extended result window before locating the target",
					},
					&cli.IntFlag{
						Name:  "traffic",
						Usage: "observed monthly visit count for the target, enables the traffic estimate",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "write the result snapshot to this path (.json or .yaml)",
					},
					&cli.StringFlag{
						Name:  "format",
						Value: "json",
						Usage: "stdout format: json or yaml",
					},
				},
			},
			{
				Name:   "status",
				Usage:  "show cache, quota, and proxy state",
				Action: status.StatusAction,
			},
			{
				Name:  "cache",
				Usage: "manage the fetch caches",
				Subcommands: []*cli.Command{
					{
						Name:   "clear",
						Usage:  "drop every cached entry",
						Action: status.CacheClearAction,
					},
					{
						Name:   "cleanup",
						Usage:  "drop only expired entries",
						Action: status.CacheCleanupAction,
					},
				},
			},
			{
				Name:  "proxies",
				Usage: "manage proxy rotation",
				Subcommands: []*cli.Command{
					{
						Name:   "reset",
						Usage:  "return every proxy to rotation and clear the global backoff",
						Action: status.ProxiesResetAction,
					},
				},
			},
			{
				Name:  "init",
				Usage: "write a starter config file",
				Action: func(c *cli.Context) error {
					path := c.String("config")
					if (&storage.Storage{}).HasFile(path) {
						return fmt.Errorf("config file already exists: %s", path)
					}
					if err := models.WriteDefault(path); err != nil {
						return err
					}
					fmt.Printf("wrote %s\n", path)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
