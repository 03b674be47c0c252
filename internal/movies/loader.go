// Package movies loads the movie hierarchy from the remote API into the
// store.
package movies

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/moviestitch/moviestitch-client/internal/catalog"
	"github.com/moviestitch/moviestitch-client/internal/cloud"
	"github.com/moviestitch/moviestitch-client/internal/logging"
	"github.com/moviestitch/moviestitch-client/internal/store"
)

type Loader struct {
	catalog     cloud.CatalogService
	transformer *catalog.Transformer
	store       *store.Store
	logger      *slog.Logger

	mu sync.Mutex
}

func NewLoader(svc cloud.CatalogService, transformer *catalog.Transformer, st *store.Store, logger *slog.Logger) *Loader {
	return &Loader{
		catalog:     svc,
		transformer: transformer,
		store:       st,
		logger:      logging.WithComponent(logger, "movies"),
	}
}

// Refresh replaces the movie tree with a fresh copy from the server.
// Concurrent calls run one after another.
func (l *Loader) Refresh(ctx context.Context) ([]catalog.Movie, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.store.Dispatch(store.MoviesRequested{})

	scripts, err := l.catalog.FetchScripts(ctx)
	if err != nil {
		logging.WithTrace(ctx, l.logger).Warn("failed to load movies", "error", err)
		l.store.Dispatch(store.MoviesFailed{Err: cloud.UserMessage(err)})
		return nil, fmt.Errorf("load movies: %w", err)
	}

	movies := l.transformer.Transform(scripts)
	next := l.store.Dispatch(store.MoviesLoaded{Movies: movies})
	logging.WithTrace(ctx, l.logger).Info("movies loaded", "count", len(movies))
	return next.Movies, nil
}
