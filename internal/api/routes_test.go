package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/moviestitch/moviestitch-client/internal/catalog"
	"github.com/moviestitch/moviestitch-client/internal/cloud"
	"github.com/moviestitch/moviestitch-client/internal/generation"
	"github.com/moviestitch/moviestitch-client/internal/movies"
	"github.com/moviestitch/moviestitch-client/internal/session"
	"github.com/moviestitch/moviestitch-client/internal/store"
	"github.com/moviestitch/moviestitch-client/internal/upload"
)

const (
	testControlToken = "control-token-0123456789"
	testScripts      = `[{
		"id": 1, "title": "Heist", "type": "movies",
		"main_sets": [{
			"id": 10, "name": "Intro",
			"sets": [
				{"id": 100, "title": "Open", "submissions": [
					{"id": 1000, "comment": "take one", "video_file_key": "clips/1000.mp4"},
					{"id": 1001, "comment": "take two", "video_file_key": "clips/1001.mp4"}
				]},
				{"id": 101, "title": "Close", "submissions": [
					{"id": 1010, "comment": "wide", "video_file_key": "clips/1010.mp4"}
				]}
			]
		}]
	}]`
)

// fakeUpstream stands in for the remote moviestitch API.
type fakeUpstream struct {
	server *httptest.Server

	mu          sync.Mutex
	stitched    [][]string
	mp4URL      string
	submissions []map[string]string
	stored      []byte
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{mp4URL: "https://cdn.example.com/out.mp4"}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/load_scripts", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, testScripts)
	})
	mux.HandleFunc("/api/generate-movie/1", func(w http.ResponseWriter, r *http.Request) {
		f.recordStitch(r)
		io.WriteString(w, `{"output": "https://cdn.example.com/out.m3u8"}`)
	})
	mux.HandleFunc("/api/generate-new-movie-mp4", func(w http.ResponseWriter, r *http.Request) {
		f.recordStitch(r)
		f.mu.Lock()
		url := f.mp4URL
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"video_url": url})
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{}`)
			return
		}
		io.WriteString(w, `{"token": "opaque-user-token", "user": {"id": 7, "name": "Sam", "email": "sam@example.com"}}`)
	})
	mux.HandleFunc("/api/user-submissions-presigned-url", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer opaque-user-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"urls": map[string]any{"videoUrl": map[string]any{"url": f.server.URL + "/storage/clip.mp4"}},
			"keys": map[string]any{"videoKey": "uploads/clip.mp4"},
		})
	})
	mux.HandleFunc("/storage/clip.mp4", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.stored = body
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/user-submissions", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.submissions = append(f.submissions, req)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"data": {"id": 5000, "comment": "`+req["comment"]+`"}}`)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeUpstream) recordStitch(r *http.Request) {
	var body struct {
		SelectedVideos []string `json:"selectedVideos"`
	}
	json.NewDecoder(r.Body).Decode(&body)
	f.mu.Lock()
	f.stitched = append(f.stitched, body.SelectedVideos)
	f.mu.Unlock()
}

func (f *fakeUpstream) snapshot() ([]byte, []map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stored, f.submissions
}

func (f *fakeUpstream) lastStitch() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.stitched) == 0 {
		return nil
	}
	return f.stitched[len(f.stitched)-1]
}

type testEnv struct {
	router   http.Handler
	upstream *fakeUpstream
	store    *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := testLogger()
	upstream := newFakeUpstream(t)

	st := store.New(logger)
	kv := newMemKV(session.KeyControlToken, testControlToken)

	// Auth calls carry no bearer token, so the session can sit on an
	// anonymous client and supply tokens to the main one.
	anon := cloud.NewHTTPClient(upstream.server.URL+"/api", nil, 5*time.Second, logger)
	sessions := session.NewService(anon.Auth(), kv, st, logger)
	client := cloud.NewHTTPClient(upstream.server.URL+"/api", sessions, 5*time.Second, logger)
	transformer := catalog.NewTransformer("https://media.example.com/", nil)

	cfg := ServerConfig{
		Version:    "test",
		Store:      st,
		Movies:     movies.NewLoader(client.Catalog(), transformer, st, logger),
		Generation: generation.NewController(st, client.Stitch(), nil, logger),
		Uploads:    upload.NewPipeline(st, client.Submissions(), transformer, logger),
		Session:    sessions,
		KV:         kv,
		Logger:     logger,
		StartTime:  time.Now(),
	}
	return &testEnv{router: NewRouter(cfg), upstream: upstream, store: st}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "127.0.0.1:40000"
	req.Header.Set("Authorization", "Bearer "+testControlToken)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// loadMovie refreshes the catalog and selects the test movie.
func (e *testEnv) loadMovie(t *testing.T) {
	t.Helper()
	if rr := e.do(t, http.MethodPost, "/movies/refresh", nil); rr.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", rr.Code, rr.Body.String())
	}
	if rr := e.do(t, http.MethodPost, "/movies/m1/select", nil); rr.Code != http.StatusOK {
		t.Fatalf("select status = %d, body %s", rr.Code, rr.Body.String())
	}
}

func TestHealthRoute_Public(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "127.0.0.1:40000"
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := decodeJSONBody(t, rr)
	if body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("body = %v", body)
	}
}

func TestPublicRoutes_LoopbackOnly(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path       string
		remoteAddr string
		wantStatus int
	}{
		{"/health", "127.0.0.1:40000", http.StatusOK},
		{"/health", "203.0.113.9:40000", http.StatusForbidden},
		{"/metrics", "[::1]:40000", http.StatusOK},
		{"/metrics", "203.0.113.9:40000", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.path+" from "+tt.remoteAddr, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.RemoteAddr = tt.remoteAddr
			rr := httptest.NewRecorder()
			env.router.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestProtectedRoutes(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.RemoteAddr = "127.0.0.1:40000"
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("without token: status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	req = httptest.NewRequest(http.MethodGet, "/state", nil)
	req.RemoteAddr = "203.0.113.9:40000"
	req.Header.Set("Authorization", "Bearer "+testControlToken)
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("remote caller: status = %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestMovieRoutes(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/movies", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var empty MoviesResponse
	json.Unmarshal(rr.Body.Bytes(), &empty)
	if empty.Movies == nil || len(empty.Movies) != 0 {
		t.Errorf("movies before refresh = %v, want empty list", empty.Movies)
	}

	env.loadMovie(t)

	rr = env.do(t, http.MethodGet, "/movies/m1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}
	var movie catalog.Movie
	json.Unmarshal(rr.Body.Bytes(), &movie)
	if movie.Title != "Heist" || len(movie.Scenes) != 1 || len(movie.Scenes[0].Subscenes) != 2 {
		t.Errorf("movie = %+v", movie)
	}

	if rr := env.do(t, http.MethodGet, "/movies/m9", nil); rr.Code != http.StatusNotFound {
		t.Errorf("unknown movie status = %d, want %d", rr.Code, http.StatusNotFound)
	}
	if rr := env.do(t, http.MethodPost, "/movies/m9/select", nil); rr.Code != http.StatusNotFound {
		t.Errorf("select unknown movie status = %d, want %d", rr.Code, http.StatusNotFound)
	}
	if got := env.store.State().SelectedMovieID; got != "m1" {
		t.Errorf("selected movie = %q, want m1", got)
	}
}

func TestGenerate_EmptySelection(t *testing.T) {
	env := newTestEnv(t)
	env.loadMovie(t)

	rr := env.do(t, http.MethodPost, "/generate", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	body := decodeJSONBody(t, rr)
	if body["error"] != "Please select at least one video" || body["code"] != "EMPTY_SELECTION" {
		t.Errorf("body = %v", body)
	}
	if env.upstream.lastStitch() != nil {
		t.Error("empty selection should not reach the server")
	}
}

func TestGenerate_StreamsSelection(t *testing.T) {
	env := newTestEnv(t)
	env.loadMovie(t)

	for _, toggle := range []ToggleRequest{
		{SubsceneID: "101", VideoID: "1010"},
		{SubsceneID: "100", VideoID: "1000"},
		{SubsceneID: "100", VideoID: "1001"},
	} {
		if rr := env.do(t, http.MethodPost, "/selection/toggle", toggle); rr.Code != http.StatusOK {
			t.Fatalf("toggle %+v status = %d", toggle, rr.Code)
		}
	}

	rr := env.do(t, http.MethodGet, "/selection", nil)
	var sel SelectionResponse
	json.Unmarshal(rr.Body.Bytes(), &sel)
	if sel.Count != 2 {
		t.Errorf("selection count = %d, want 2", sel.Count)
	}

	rr = env.do(t, http.MethodPost, "/generate", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("generate status = %d, body %s", rr.Code, rr.Body.String())
	}
	var job JobResponse
	json.Unmarshal(rr.Body.Bytes(), &job)
	if job.Kind != store.JobStream || job.Status != store.JobSucceeded || job.URL != "https://cdn.example.com/out.m3u8" {
		t.Errorf("job = %+v", job)
	}

	got := env.upstream.lastStitch()
	if len(got) != 2 || got[0] != "1001" || got[1] != "1010" {
		t.Errorf("selectedVideos = %v, want [1001 1010]", got)
	}

	if rr := env.do(t, http.MethodDelete, "/generate", nil); rr.Code != http.StatusNoContent {
		t.Fatalf("dismiss status = %d", rr.Code)
	}
	s := env.store.State()
	if s.Selection.Count() != 0 || s.Jobs[store.JobStream].Status != store.JobIdle {
		t.Errorf("after dismiss: count %d job %+v", s.Selection.Count(), s.Jobs[store.JobStream])
	}
}

func TestGenerate_AIModeWithoutSelection(t *testing.T) {
	env := newTestEnv(t)
	env.loadMovie(t)

	if rr := env.do(t, http.MethodPut, "/ai-mode", EnabledRequest{Enabled: true}); rr.Code != http.StatusOK {
		t.Fatalf("ai-mode status = %d", rr.Code)
	}

	rr := env.do(t, http.MethodPost, "/generate", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("generate status = %d, body %s", rr.Code, rr.Body.String())
	}

	got := env.upstream.lastStitch()
	if len(got) != 1 || (got[0] != "1000" && got[0] != "1001") {
		t.Errorf("selectedVideos = %v, want one video of the first subscene", got)
	}
}

func TestDownload_MissingURL(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.mp4URL = ""
	env.loadMovie(t)
	env.do(t, http.MethodPost, "/selection/toggle", ToggleRequest{SubsceneID: "100", VideoID: "1000"})

	rr := env.do(t, http.MethodPost, "/download", nil)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadGateway)
	}
	body := decodeJSONBody(t, rr)
	if body["error"] != "No video URL received from server" || body["code"] != "INVALID_RESPONSE" {
		t.Errorf("body = %v", body)
	}
	if job := env.store.State().Jobs[store.JobDownload]; job.Status != store.JobFailed {
		t.Errorf("download job = %+v, want failed", job)
	}
}

func TestSelectionRoutes(t *testing.T) {
	env := newTestEnv(t)
	env.loadMovie(t)

	rr := env.do(t, http.MethodPost, "/selection/toggle", ToggleRequest{SubsceneID: "100", VideoID: "9999"})
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown video status = %d, want %d", rr.Code, http.StatusNotFound)
	}

	rr = env.do(t, http.MethodPost, "/scenes/10/random", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("random status = %d", rr.Code)
	}
	if got := env.store.State().Selection.Count(); got != 2 {
		t.Errorf("random selection count = %d, want one per subscene", got)
	}

	if rr := env.do(t, http.MethodDelete, "/scenes/10/selection", nil); rr.Code != http.StatusOK {
		t.Fatalf("clear scene status = %d", rr.Code)
	}
	if got := env.store.State().Selection.Count(); got != 0 {
		t.Errorf("selection after clear = %d, want 0", got)
	}

	if rr := env.do(t, http.MethodPost, "/scenes/99/random", nil); rr.Code != http.StatusNotFound {
		t.Errorf("unknown scene status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestPlaybackRoutes(t *testing.T) {
	env := newTestEnv(t)

	if rr := env.do(t, http.MethodPut, "/playback", PlaybackRequest{}); rr.Code != http.StatusBadRequest {
		t.Errorf("missing url status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	end := 12.5
	rr := env.do(t, http.MethodPut, "/playback", PlaybackRequest{URL: "https://cdn.example.com/a.mp4", StartTime: 2, EndTime: &end})
	if rr.Code != http.StatusOK {
		t.Fatalf("start status = %d", rr.Code)
	}
	if p := env.store.State().Playback; p == nil || p.EndTime == nil || *p.EndTime != 12.5 {
		t.Errorf("playback = %+v", p)
	}

	if rr := env.do(t, http.MethodDelete, "/playback", nil); rr.Code != http.StatusNoContent {
		t.Fatalf("dismiss status = %d", rr.Code)
	}
	if env.store.State().Playback != nil {
		t.Error("playback should be cleared")
	}
}

func TestLoginRoute(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/auth/login", LoginRequest{Email: "sam@example.com", Password: "wrong"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if got := decodeJSONBody(t, rr)["error"]; got != "Invalid credentials" {
		t.Errorf("error = %v, want Invalid credentials", got)
	}

	rr = env.do(t, http.MethodPost, "/auth/login", LoginRequest{Email: "sam@example.com", Password: "secret"})
	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rr.Code, rr.Body.String())
	}
	var auth store.Auth
	json.Unmarshal(rr.Body.Bytes(), &auth)
	if !auth.Authenticated || auth.User == nil || auth.User.Name != "Sam" {
		t.Errorf("auth = %+v", auth)
	}
	if bytes.Contains(rr.Body.Bytes(), []byte("opaque-user-token")) {
		t.Error("user token must not be exposed by the control API")
	}

	if rr := env.do(t, http.MethodPost, "/auth/logout", nil); rr.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", rr.Code)
	}
	if env.store.State().Auth.Authenticated {
		t.Error("still authenticated after logout")
	}
}

func TestResetRoute_Validation(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/auth/reset/request", ResetRequest{Email: "not-an-email"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if code := decodeJSONBody(t, rr)["code"]; code != "VALIDATION_ERROR" {
		t.Errorf("code = %v, want VALIDATION_ERROR", code)
	}
}

func TestUploadFlow(t *testing.T) {
	env := newTestEnv(t)
	env.loadMovie(t)

	clip := filepath.Join(t.TempDir(), "My Clip.mp4")
	if err := os.WriteFile(clip, []byte("fake video bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	rr := env.do(t, http.MethodPost, "/uploads", UploadRequest{SubsceneID: "100", Path: clip})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("upload as guest status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	env.do(t, http.MethodPost, "/auth/login", LoginRequest{Email: "sam@example.com", Password: "secret"})

	rr = env.do(t, http.MethodPost, "/uploads", UploadRequest{SubsceneID: "100", Path: clip})
	if rr.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body %s", rr.Code, rr.Body.String())
	}
	var staged store.Upload
	json.Unmarshal(rr.Body.Bytes(), &staged)
	if staged.Phase != store.UploadAwaitingComment || staged.PendingKey != "uploads/clip.mp4" {
		t.Errorf("upload = %+v", staged)
	}
	if stored, _ := env.upstream.snapshot(); string(stored) != "fake video bytes" {
		t.Errorf("stored = %q", stored)
	}

	if rr := env.do(t, http.MethodPost, "/uploads/comment", CommentRequest{Comment: "   "}); rr.Code != http.StatusBadRequest {
		t.Errorf("blank comment status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	rr = env.do(t, http.MethodPost, "/uploads/comment", CommentRequest{Comment: "great take"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("comment status = %d, body %s", rr.Code, rr.Body.String())
	}
	var created CommentResponse
	json.Unmarshal(rr.Body.Bytes(), &created)
	if created.Video == nil || created.Video.ID != "5000" || created.Video.Name != "great take" {
		t.Errorf("video = %+v", created.Video)
	}
	if created.Upload.PendingKey != "" || created.Upload.Phase != store.UploadSubmitted {
		t.Errorf("upload after submit = %+v", created.Upload)
	}

	if _, subs := env.upstream.snapshot(); len(subs) != 1 || subs[0]["set_id"] != "100" {
		t.Errorf("submissions = %v", subs)
	}

	st := env.store.State()
	_, sub := st.FindSubscene("100")
	if sub == nil || len(sub.Videos) != 3 {
		t.Fatalf("subscene videos = %+v", sub)
	}

	if rr := env.do(t, http.MethodPost, "/uploads/comment", CommentRequest{Comment: "again"}); rr.Code != http.StatusConflict {
		t.Errorf("second comment status = %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestUploadRoute_CanceledPick(t *testing.T) {
	env := newTestEnv(t)
	env.loadMovie(t)

	rr := env.do(t, http.MethodPost, "/uploads", UploadRequest{SubsceneID: "100"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if phase := env.store.State().Upload.Phase; phase != store.UploadIdle {
		t.Errorf("phase = %q, want idle", phase)
	}

	if rr := env.do(t, http.MethodPost, "/uploads", UploadRequest{SubsceneID: "nope", Path: "/tmp/x"}); rr.Code != http.StatusNotFound {
		t.Errorf("unknown subscene status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
