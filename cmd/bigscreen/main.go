package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/arcade-bigscreen/app"
	"github.com/Black-And-White-Club/arcade-bigscreen/app/observability"
	"github.com/Black-And-White-Club/arcade-bigscreen/config"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	cliApp := &cli.App{
		Name:  "bigscreen",
		Usage: "arcade big-screen leaderboard scheduler",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"BIGSCREEN_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			scheduleCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the scheduler and display endpoints",
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			obs, err := observability.Init(ctx, os.Stdout, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize observability: %w", err)
			}
			application, err := app.NewApp(ctx, cfg, obs)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			obs.Logger.InfoContext(ctx, "Starting big-screen service", "address", cfg.HTTP.Address)
			if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			obs.Logger.Info("Big-screen service shut down gracefully")
			return nil
		},
	}
}

func scheduleCommand() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "fetch the summary once and print the weighted rotation",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print rows as JSON"},
			&cli.IntFlag{Name: "per-page", Usage: "override cards per page"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			obs, err := observability.Init(c.Context, os.Stderr, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize observability: %w", err)
			}
			defer func() {
				if err := obs.Shutdown(context.Background()); err != nil {
					obs.Logger.Error("Failed to flush traces", "error", err)
				}
			}()
			return runSchedule(c.Context, cfg, obs, scheduleOptions{
				JSON:    c.Bool("json"),
				PerPage: c.Int("per-page"),
			}, os.Stdout)
		},
	}
}
