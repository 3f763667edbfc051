// File: /main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"motoroutes-api/config"
	"motoroutes-api/database"
	"motoroutes-api/repositories"
	"motoroutes-api/routes"
	"motoroutes-api/services"
	"motoroutes-api/utils"
)

// @title                       Moto Routes API
// @version                     1.0
// @description                 Share motorcycle routes, points of interest, images and comments.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()
	setupLogger(cfg)

	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := services.NewFileStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize file storage")
	}

	// Maintenance commands run against the same database and exit.
	if len(os.Args) > 1 {
		if err := runCommand(ctx, db, storage, os.Args[1:]); err != nil {
			log.Fatal().Err(err).Str("command", os.Args[1]).Msg("command failed")
		}
		return
	}

	if cfg.SeedData {
		if err := database.SeedData(db); err != nil {
			log.Warn().Err(err).Msg("failed to seed database")
		}
	}

	if err := serve(ctx, db, cfg, storage); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// serve runs the HTTP server until ctx is cancelled, then drains it.
func serve(ctx context.Context, db *gorm.DB, cfg *config.Config, storage services.FileStorage) error {
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(db, cfg, storage, ctx.Done()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Env).Msg("starting Moto Routes API server")
		log.Info().Msgf("API documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func runCommand(ctx context.Context, db *gorm.DB, storage services.FileStorage, args []string) error {
	switch args[0] {
	case "delete-user":
		if len(args) != 2 {
			return errors.New("usage: motoroutes-api delete-user <id>")
		}
		id, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[1])
		}

		users := services.NewUserService(repositories.NewUserRepository(db), storage, utils.NewValidator())
		return users.Delete(ctx, uint(id))
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
