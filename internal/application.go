package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rocketscienceinc/tictactoe-arena/internal/config"
	"github.com/rocketscienceinc/tictactoe-arena/internal/monitor"
	"github.com/rocketscienceinc/tictactoe-arena/internal/ratelimit"
	"github.com/rocketscienceinc/tictactoe-arena/internal/registry"
	"github.com/rocketscienceinc/tictactoe-arena/internal/repository"
	"github.com/rocketscienceinc/tictactoe-arena/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-arena/transport/rest"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	metrics := monitor.NewMetrics(prometheus.DefaultRegisterer, "tictactoe")

	var (
		players *registry.PlayerRegistry
		games   *registry.GameRegistry
	)

	if conf.Redis.Enabled {
		redisStorage, err := storage.New(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		playerRepo := repository.NewPlayerRepository(redisStorage.Connection)
		gameRepo := repository.NewGameRepository(redisStorage.Connection)

		players = registry.NewPlayerRegistry(logger, playerRepo, metrics)
		games = registry.NewGameRegistry(logger, players, gameRepo, metrics)

		archivedPlayers, err := playerRepo.All(ctx)
		if err != nil {
			return fmt.Errorf("could not restore players: %w", err)
		}
		players.Restore(archivedPlayers)

		archivedGames, err := gameRepo.All(ctx)
		if err != nil {
			return fmt.Errorf("could not restore games: %w", err)
		}
		games.Restore(archivedGames)

		log.Info("restored state from archive", "players", len(archivedPlayers), "games", len(archivedGames))
	} else {
		players = registry.NewPlayerRegistry(logger, nil, metrics)
		games = registry.NewGameRegistry(logger, players, nil, metrics)
	}

	var server *rest.Server
	if conf.RateLimit.Enabled {
		limiter := ratelimit.New(conf.RateLimit.PerMinute, conf.RateLimit.PerHour)
		server = rest.New(logger, players, games, limiter)
	} else {
		server = rest.New(logger, players, games, nil)
	}

	log.Info("Starting HTTP server", "port", conf.HTTPPort)
	if err := server.Start(ctx, conf.HTTPPort); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	return nil
}
