package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/moviestitch/moviestitch-client/internal/movies"
	"github.com/moviestitch/moviestitch-client/internal/store"
)

const refreshTimeout = 30 * time.Second

type Tray struct {
	store  *store.Store
	movies *movies.Loader
	logger *slog.Logger

	accountItem *systray.MenuItem
	streamItem  *systray.MenuItem
	uploadItem  *systray.MenuItem
	aiModeItem  *systray.MenuItem

	mu          sync.Mutex
	ready       bool
	unsubscribe func()

	onQuit func()
}

type TrayConfig struct {
	Store  *store.Store
	Movies *movies.Loader
	Logger *slog.Logger
	OnQuit func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		store:  cfg.Store,
		movies: cfg.Movies,
		logger: cfg.Logger,
		onQuit: cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("MovieStitch")
	systray.SetTooltip("MovieStitch")

	t.accountItem = systray.AddMenuItem("Account: signed out", "Current session")
	t.accountItem.Disable()

	t.streamItem = systray.AddMenuItem("Stitch: idle", "Latest stitch")
	t.streamItem.Disable()

	t.uploadItem = systray.AddMenuItem("Upload: idle", "Current upload")
	t.uploadItem.Disable()

	systray.AddSeparator()

	refreshItem := systray.AddMenuItem("Refresh Movies", "Reload movies from the server")
	t.aiModeItem = systray.AddMenuItemCheckbox("AI Mode", "Let the app pick videos", false)

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit MovieStitch")

	t.mu.Lock()
	t.ready = true
	t.mu.Unlock()

	t.render(t.store.State())
	t.unsubscribe = t.store.Subscribe(t.render)

	go func() {
		for {
			select {
			case <-refreshItem.ClickedCh:
				go t.refresh()
			case <-t.aiModeItem.ClickedCh:
				enabled := !t.store.State().AIMode
				t.store.Dispatch(store.AIModeSet{Enabled: enabled})
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	if t.unsubscribe != nil {
		t.unsubscribe()
	}
	t.logger.Info("system tray exiting")
}

func (t *Tray) refresh() {
	if t.movies == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if _, err := t.movies.Refresh(ctx); err != nil {
		t.logger.Error("failed to refresh movies", "error", err)
	}
}

// render mirrors s into the menu. It is a store listener.
func (t *Tray) render(s store.State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.ready {
		return
	}

	t.accountItem.SetTitle(accountLine(s.Auth))
	t.streamItem.SetTitle(stitchLine(s.Jobs))
	t.uploadItem.SetTitle(uploadLine(s.Upload))
	if s.AIMode {
		t.aiModeItem.Check()
	} else {
		t.aiModeItem.Uncheck()
	}
}

func (t *Tray) Quit() {
	systray.Quit()
}

func accountLine(a store.Auth) string {
	switch {
	case a.Loading:
		return "Account: signing in..."
	case a.Authenticated && a.User != nil && a.User.Name != "":
		return "Account: " + a.User.Name
	case a.Authenticated:
		return "Account: signed in"
	case a.Guest:
		return "Account: guest"
	default:
		return "Account: signed out"
	}
}

// stitchLine summarises both workflows, the download taking precedence
// while it is pending.
func stitchLine(jobs map[store.JobKind]store.Job) string {
	stream, download := jobs[store.JobStream], jobs[store.JobDownload]
	switch {
	case download.Status == store.JobPending:
		return "Stitch: preparing download..."
	case stream.Status == store.JobPending:
		return "Stitch: generating..."
	case download.Status == store.JobFailed:
		return "Stitch: download failed"
	case stream.Status == store.JobFailed:
		return "Stitch: failed"
	case download.Status == store.JobSucceeded:
		return "Stitch: download ready"
	case stream.Status == store.JobSucceeded:
		return "Stitch: ready to play"
	default:
		return "Stitch: idle"
	}
}

func uploadLine(u store.Upload) string {
	switch u.Phase {
	case store.UploadPermissionRequested:
		return "Upload: waiting for permission"
	case store.UploadCapturing:
		return "Upload: recording"
	case store.UploadPicking:
		return "Upload: choosing a video"
	case store.UploadUploading:
		if u.Filename != "" {
			return fmt.Sprintf("Upload: sending %s", u.Filename)
		}
		return "Upload: sending"
	case store.UploadAwaitingComment:
		return "Upload: add a comment"
	case store.UploadSubmitted:
		return "Upload: submitted"
	case store.UploadError:
		return "Upload: failed"
	default:
		if u.Notice != "" {
			return "Upload: " + u.Notice
		}
		return "Upload: idle"
	}
}
