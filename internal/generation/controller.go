// Package generation drives the two stitch workflows: streaming a preview
// and downloading the stitched MP4.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/moviestitch/moviestitch-client/internal/cloud"
	"github.com/moviestitch/moviestitch-client/internal/logging"
	"github.com/moviestitch/moviestitch-client/internal/metrics"
	"github.com/moviestitch/moviestitch-client/internal/selection"
	"github.com/moviestitch/moviestitch-client/internal/store"
)

// ErrInProgress is returned when a workflow of the same kind is already
// waiting on the server.
var ErrInProgress = errors.New("stitch already in progress")

// Controller runs at most one request per workflow kind at a time.
type Controller struct {
	store  *store.Store
	stitch cloud.StitchService
	src    selection.RandomSource
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	inFlight map[store.JobKind]bool
}

func NewController(st *store.Store, stitch cloud.StitchService, src selection.RandomSource, logger *slog.Logger) *Controller {
	if src == nil {
		src = selection.DefaultSource
	}
	return &Controller{
		store:    st,
		stitch:   stitch,
		src:      src,
		logger:   logging.WithComponent(logger, "generation"),
		now:      time.Now,
		inFlight: make(map[store.JobKind]bool),
	}
}

// Generate requests a streamable preview of the current selection.
func (c *Controller) Generate(ctx context.Context) (string, error) {
	return c.run(ctx, store.JobStream, c.stitch.GenerateMovie)
}

// Download requests a downloadable MP4 of the current selection.
func (c *Controller) Download(ctx context.Context) (string, error) {
	return c.run(ctx, store.JobDownload, c.stitch.GenerateMovieMP4)
}

// Dismiss resets the job of kind and clears its movie's scene selections.
func (c *Controller) Dismiss(kind store.JobKind) {
	c.store.Dispatch(store.JobDismissed{Kind: kind})
}

// Running reports whether a request of kind is in flight.
func (c *Controller) Running(kind store.JobKind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight[kind]
}

func (c *Controller) acquire(kind store.JobKind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight[kind] {
		return false
	}
	c.inFlight[kind] = true
	return true
}

func (c *Controller) release(kind store.JobKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, kind)
}

type stitchFunc func(ctx context.Context, selectedVideos []string) (string, error)

func (c *Controller) run(ctx context.Context, kind store.JobKind, call stitchFunc) (string, error) {
	if !c.acquire(kind) {
		return "", fmt.Errorf("%s: %w", kind, ErrInProgress)
	}
	defer c.release(kind)

	gauge := metrics.WorkflowInFlight.WithLabelValues(string(kind))
	gauge.Inc()
	defer gauge.Dec()

	state := c.store.State()
	ids := BuildSubmission(state, c.src)

	logger := logging.WithTrace(ctx, c.logger).With("kind", kind)
	if state.SelectedMovieID != "" {
		logger = logging.WithMovieID(logger, state.SelectedMovieID)
	}
	logger.Info("stitch requested", "videos", len(ids), "ai_mode", state.AIMode)

	c.store.Dispatch(store.JobStarted{
		Kind:     kind,
		MovieID:  state.SelectedMovieID,
		VideoIDs: ids,
		At:       c.now(),
	})

	url, err := call(ctx, ids)
	if err != nil {
		logger.Warn("stitch failed", "error", err)
		metrics.RecordWorkflow(string(kind), "failed")
		c.store.Dispatch(store.JobErrored{Kind: kind, Err: cloud.UserMessage(err), At: c.now()})
		return "", fmt.Errorf("%s: %w", kind, err)
	}

	logger.Info("stitch ready", "url", url)
	metrics.RecordWorkflow(string(kind), "succeeded")
	c.store.Dispatch(store.JobCompleted{Kind: kind, URL: url, At: c.now()})
	return url, nil
}

// BuildSubmission returns the video ids to send. In AI mode the selection
// record is ignored and one random video of each of the selected movie's
// scenes is used instead. Otherwise each subscene contributes according to
// the type of the movie that owns it.
func BuildSubmission(state store.State, src selection.RandomSource) []string {
	if movie := state.SelectedMovie(); state.AIMode && movie != nil {
		return selection.AutoPick(movie, src).For(movie.Type)
	}
	return selection.Derive(state.Selection).Resolve(state.MultiChoice)
}
