package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dyluth/capo/internal/config"
	"github.com/dyluth/capo/internal/localstore"
	"github.com/dyluth/capo/internal/printer"
	"github.com/dyluth/capo/internal/resolver"
	"github.com/dyluth/capo/internal/session"
	"github.com/dyluth/capo/pkg/chords"
	"github.com/dyluth/capo/pkg/songstore"
	"github.com/redis/go-redis/v9"
)

// songBackend is what every command needs from a store backend.
// Both songstore.Client and localstore.DBClient satisfy it.
type songBackend interface {
	session.SongProvider
	session.TransposeStore
	resolver.SongLookup
	ListSongs(ctx context.Context) ([]*chords.Song, error)
	DeleteSong(ctx context.Context, songID string) error
	Ping(ctx context.Context) error
	Close() error
}

// openBackend connects to the configured store. Tests replace it.
var openBackend = defaultOpenBackend

func defaultOpenBackend(ctx context.Context, cfg *config.CapoConfig) (songBackend, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		client, err := localstore.NewDBClient(cfg.Store.SQLitePath)
		if err != nil {
			return nil, printer.ErrorWithContext(
				"SQLite store unavailable",
				fmt.Sprintf("Could not open %s", cfg.Store.SQLitePath),
				map[string]string{"error": err.Error()},
				[]string{"Check the store.sqlite_path setting in capo.yml"},
			)
		}
		return client, nil

	default:
		redisOpts, err := redis.ParseURL(cfg.Store.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client, err := songstore.NewClient(redisOpts, cfg.Store.Namespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create song store client: %w", err)
		}
		if err := client.Ping(ctx); err != nil {
			client.Close()
			return nil, printer.ErrorWithContext(
				"Redis connection failed",
				fmt.Sprintf("Could not connect to Redis at %s", cfg.Store.RedisURL),
				nil,
				[]string{
					"Start Redis locally:\n  redis-server",
					"Or work offline with store.backend: sqlite in capo.yml",
				},
			)
		}
		return client, nil
	}
}

// loadConfig reads --config, falling back to defaults when capo.yml is absent.
func loadConfig() (*config.CapoConfig, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, printer.Error(
			"invalid configuration",
			err.Error(),
			[]string{fmt.Sprintf("Fix or remove %s", configPath)},
		)
	}
	return cfg, nil
}

// connect loads config and opens the backend in one step.
func connect(ctx context.Context) (*config.CapoConfig, songBackend, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, backend, nil
}

// resolveSong turns a full or short song ID into a stored song ID, printing
// user-facing errors for unknown or ambiguous prefixes.
func resolveSong(ctx context.Context, backend songBackend, shortID string) (string, error) {
	fullID, err := resolver.ResolveSongID(ctx, backend, shortID)
	if err == nil {
		return fullID, nil
	}

	if resolver.IsNotFoundError(err) {
		return "", printer.Error(
			fmt.Sprintf("song with ID '%s' not found", shortID),
			"No stored song matches that ID.",
			[]string{"List all songs:\n  capo list"},
		)
	}
	var ambiguous *resolver.AmbiguousError
	if errors.As(err, &ambiguous) {
		fmt.Fprintln(os.Stderr, resolver.FormatAmbiguousError(ambiguous))
		return "", fmt.Errorf("ambiguous short ID")
	}
	return "", fmt.Errorf("failed to resolve song ID: %w", err)
}

// nothingToRender reports a song that vanished between resolve and load.
func nothingToRender(songID string) error {
	printer.Info("Nothing to render: song %s has no stored lyrics.\n", songID)
	return fmt.Errorf("nothing to render")
}
