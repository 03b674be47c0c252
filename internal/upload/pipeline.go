// Package upload sends a user's clip to storage through a presigned URL and
// then binds it to a subscene once the user adds a comment.
package upload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/moviestitch/moviestitch-client/internal/catalog"
	"github.com/moviestitch/moviestitch-client/internal/cloud"
	"github.com/moviestitch/moviestitch-client/internal/logging"
	"github.com/moviestitch/moviestitch-client/internal/metrics"
	"github.com/moviestitch/moviestitch-client/internal/store"
)

// Notices shown when the device refuses access.
const (
	CameraPermissionNotice  = "Please allow camera access."
	LibraryPermissionNotice = "Please allow media library access."
)

// Pipeline runs one upload at a time. Its phase lives in the store.
type Pipeline struct {
	store       *store.Store
	submissions cloud.SubmissionService
	transformer *catalog.Transformer
	logger      *slog.Logger
	now         func() time.Time

	mu      sync.Mutex
	running bool
}

func NewPipeline(st *store.Store, submissions cloud.SubmissionService, transformer *catalog.Transformer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:       st,
		submissions: submissions,
		transformer: transformer,
		logger:      logging.WithComponent(logger, "upload"),
		now:         time.Now,
	}
}

func (p *Pipeline) acquire() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return false
	}
	p.running = true
	return true
}

func (p *Pipeline) release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
}

// Start takes a clip from src and uploads it for subsceneID. On success the
// pipeline waits in awaiting_comment until SubmitComment or Reset.
func (p *Pipeline) Start(ctx context.Context, subsceneID string, src MediaSource, media Media) error {
	st := p.store.State()
	if _, sub := st.FindSubscene(subsceneID); sub == nil {
		return fmt.Errorf("%w: %q", ErrUnknownSubscene, subsceneID)
	}
	if !p.acquire() {
		return ErrBusy
	}
	defer p.release()

	logger := logging.WithTrace(ctx, p.logger).With("subscene_id", subsceneID, "media", media)
	p.store.Dispatch(store.UploadStarted{SubsceneID: subsceneID})

	granted, err := src.RequestPermission(ctx, media)
	if err != nil {
		return p.fail(logger, "permission", fmt.Errorf("request permission: %w", err))
	}
	if !granted {
		logger.Info("media permission denied")
		p.store.Dispatch(store.UploadReset{})
		p.store.Dispatch(store.UploadPhaseChanged{Phase: store.UploadIdle, Notice: permissionNotice(media)})
		metrics.RecordUpload("permission_denied")
		return ErrPermissionDenied
	}

	phase := store.UploadPicking
	if media == MediaCamera {
		phase = store.UploadCapturing
	}
	p.store.Dispatch(store.UploadPhaseChanged{Phase: phase})

	asset, err := src.Acquire(ctx, media)
	if err != nil {
		return p.fail(logger, "acquire", err)
	}
	if asset == nil {
		logger.Info("media selection canceled")
		p.store.Dispatch(store.UploadReset{})
		metrics.RecordUpload("canceled")
		return ErrCanceled
	}

	filename := NormalizeFilename(asset.Name, asset.Path, p.now())
	logger = logger.With("filename", filename)

	f, err := os.Open(asset.Path)
	if err != nil {
		return p.fail(logger, "open", fmt.Errorf("open %s: %w", logging.SanitizePath(asset.Path), err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return p.fail(logger, "open", fmt.Errorf("stat %s: %w", logging.SanitizePath(asset.Path), err))
	}
	if info.Size() == 0 {
		return p.fail(logger, "empty_file", ErrEmptyFile)
	}

	p.store.Dispatch(store.UploadSending{Filename: filename})

	target, err := p.submissions.PresignUpload(ctx, filename)
	if err != nil {
		return p.fail(logger, "presign", err)
	}

	logger.Info("uploading video", "bytes", info.Size(), "key", target.Key)
	if err := p.submissions.PutObject(ctx, target, f, info.Size()); err != nil {
		return p.fail(logger, "put", err)
	}

	p.store.Dispatch(store.UploadStaged{Key: target.Key, Filename: filename})
	metrics.RecordUpload("staged")
	logger.Info("video uploaded, awaiting comment", "key", target.Key)
	return nil
}

// SubmitComment creates the submission for the staged upload. The pending
// key and subscene are cleared whether or not the request succeeds.
func (p *Pipeline) SubmitComment(ctx context.Context, comment string) (*catalog.Video, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, ErrEmptyComment
	}

	state := p.store.State()
	pending := state.Upload
	if pending.PendingKey == "" || pending.Phase != store.UploadAwaitingComment {
		return nil, ErrNothingPending
	}
	if !p.acquire() {
		return nil, ErrBusy
	}
	defer p.release()
	defer p.store.Dispatch(store.UploadCleanup{})

	logger := logging.WithTrace(ctx, p.logger).With("subscene_id", pending.SubsceneID, "key", pending.PendingKey)

	_, sub := state.FindSubscene(pending.SubsceneID)
	setID := pending.SubsceneID
	if sub != nil && sub.SourceID != "" {
		setID = sub.SourceID
	}

	raw, err := p.submissions.CreateSubmission(ctx, cloud.SubmissionRequest{
		SetID:        setID,
		Comment:      comment,
		VideoFileKey: pending.PendingKey,
	})
	if err != nil {
		return nil, p.fail(logger, "submit", err)
	}

	p.store.Dispatch(store.UploadConfirmed{})
	metrics.RecordUpload("submitted")
	logger.Info("submission created", "submission_id", string(raw.ID))

	if sub == nil {
		logger.Warn("subscene no longer loaded, skipping local insert")
		return nil, nil
	}
	v := p.transformer.Video(*raw, sub, len(sub.Videos))
	next := p.store.Dispatch(store.VideoAdded{SubsceneID: sub.ID, Video: v})
	if _, updated := next.FindSubscene(sub.ID); updated != nil {
		if added := updated.Video(v.ID); added != nil {
			v = *added
		}
	}
	return &v, nil
}

// Reset abandons any staged upload and returns to idle.
func (p *Pipeline) Reset() {
	p.store.Dispatch(store.UploadReset{})
}

func (p *Pipeline) fail(logger *slog.Logger, stage string, err error) error {
	logger.Warn("upload failed", "stage", stage, "error", err)
	p.store.Dispatch(store.UploadFailed{Err: Message(err)})
	metrics.RecordUpload("failed_" + stage)
	return err
}

func permissionNotice(media Media) string {
	if media == MediaCamera {
		return CameraPermissionNotice
	}
	return LibraryPermissionNotice
}
