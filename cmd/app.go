package main

import (
	"context"
	"time"

	"github.com/glefebvre/moviesearch/internal/blobstore"
	"github.com/glefebvre/moviesearch/internal/config"
	"github.com/glefebvre/moviesearch/internal/external/omdb"
	"github.com/glefebvre/moviesearch/internal/favourites"
	"github.com/glefebvre/moviesearch/internal/imagefallback"
	"github.com/glefebvre/moviesearch/internal/logger"
	"github.com/glefebvre/moviesearch/internal/moviestore"
)

// app holds the components every command works with
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	blobs   blobstore.Store
	client  *omdb.Client
	store   *moviestore.Store
	posters *imagefallback.Registry
}

// newApp opens the blob store, builds the OMDb client and loads the
// favourites. The caller owns Close.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.AppLogger()

	blobs, err := blobstore.Open(cfg)
	if err != nil {
		return nil, err
	}

	client := omdb.NewClient(omdb.Config{
		BaseURL:       cfg.OMDB.BaseURL,
		APIKey:        cfg.OMDB.APIKey,
		Timeout:       time.Duration(cfg.OMDB.TimeoutSeconds) * time.Second,
		RetryAttempts: cfg.OMDB.RetryAttempts,
		Logger:        log,
	})

	store := moviestore.New(client, favourites.New(blobs, logger.StorageLogger()), moviestore.Config{
		MaxErrors:      cfg.State.MaxErrors,
		MinQueryLength: cfg.State.MinQueryLength,
		Logger:         log,
	})
	if err := store.Initialize(ctx); err != nil {
		blobs.Close()
		return nil, err
	}

	posters := imagefallback.NewRegistry(
		imagefallback.WithFallbackURL(cfg.Images.FallbackURL),
		imagefallback.WithEmojiFallback(cfg.Images.ShowEmoji),
	)

	return &app{
		cfg:     cfg,
		log:     log,
		blobs:   blobs,
		client:  client,
		store:   store,
		posters: posters,
	}, nil
}

// Close stops in-flight requests and releases the blob store
func (a *app) Close() error {
	a.store.Close()
	return a.blobs.Close()
}
