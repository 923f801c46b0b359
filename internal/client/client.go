// Package client wires configuration into the services the commands
// use. Drive access is connected lazily so local-only commands (status,
// reset) never touch credentials.
package client

import (
	"context"
	"fmt"

	"drivemerge/internal/config"
	"drivemerge/internal/drive"
	"drivemerge/internal/events"
	"drivemerge/internal/extract"
	"drivemerge/internal/merge"
	"drivemerge/internal/models"
	"drivemerge/internal/services/sync"
	"drivemerge/internal/state"
	"drivemerge/internal/storage"
)

// Client provides the high-level API for drivemerge operations.
type Client struct {
	States state.Store

	config    *config.Config
	logger    *events.Logger
	texts     *storage.TextCache
	output    *storage.LocalStore
	extractor *extract.Service
	planner   *merge.Planner
	writer    *merge.Writer
}

// New creates a client with everything except Drive access.
func New(cfg *config.Config, logger *events.Logger) (*Client, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	stateStore, err := newStateStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	texts, err := storage.NewTextCache(cfg.Storage.TextCacheDir, logger)
	if err != nil {
		return nil, err
	}

	output, err := storage.NewLocalStore(cfg.Storage.OutputDir, logger)
	if err != nil {
		return nil, err
	}

	planner := merge.NewPlanner(merge.Limits{
		MaxBytes: cfg.Merge.MaxBytes,
		MaxWords: cfg.Merge.MaxWords,
	})

	return &Client{
		States:    stateStore,
		config:    cfg,
		logger:    logger,
		texts:     texts,
		output:    output,
		extractor: extract.NewService(logger),
		planner:   planner,
		writer:    merge.NewWriter(output, logger),
	}, nil
}

// NewSyncService connects to Drive and returns a ready orchestrator.
func (c *Client) NewSyncService(ctx context.Context) (*sync.Service, error) {
	driveClient, err := drive.NewClient(ctx, &c.config.Drive, c.logger)
	if err != nil {
		return nil, &models.SyncError{Code: models.ErrCodeAuth, Phase: "connect", Err: err}
	}

	return sync.NewService(
		driveClient,
		driveClient,
		c.extractor,
		c.States,
		c.texts,
		c.planner,
		c.writer,
		c.logger,
	), nil
}

// LedgerInfo loads a summary of one folder's ledger.
func (c *Client) LedgerInfo(folderID string) (*state.LedgerInfo, error) {
	led, err := c.States.Load(folderID)
	if err != nil {
		return nil, err
	}
	return state.Summarize(led), nil
}

// ResetFolder drops a folder's ledger. The next sync rebuilds from
// scratch; merged output is regenerated either way.
func (c *Client) ResetFolder(folderID string) error {
	return c.States.Reset(folderID)
}

// Close releases resources.
func (c *Client) Close() error {
	return c.States.Close()
}

func newStateStore(cfg *config.Config, logger *events.Logger) (state.Store, error) {
	switch cfg.Storage.StateBackend {
	case "sqlite":
		return state.NewSQLiteStore(cfg.Storage.StateDir+"/ledgers.db", logger)
	case "json":
		return state.NewJSONStore(cfg.Storage.StateDir, logger)
	default:
		return nil, fmt.Errorf("%w: unknown state backend %q",
			models.ErrInvalidConfig, cfg.Storage.StateBackend)
	}
}
