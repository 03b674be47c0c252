package movies

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/moviestitch/moviestitch-client/internal/catalog"
	"github.com/moviestitch/moviestitch-client/internal/cloud"
	"github.com/moviestitch/moviestitch-client/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeCatalog struct {
	body string
	err  error
}

func (f fakeCatalog) FetchScripts(context.Context) ([]cloud.RawScript, error) {
	if f.err != nil {
		return nil, f.err
	}
	return cloud.DecodeScripts([]byte(f.body))
}

func TestLoader_Refresh(t *testing.T) {
	st := store.New(testLogger())
	tr := catalog.NewTransformer("https://media.example.com/", nil)
	body := `[{"id": 1, "title": "Heist", "type": "storytelling", "main_sets": [
		{"id": 10, "name": "Opening", "sets": [{"id": 100, "title": "Wide", "submissions": [{"id": 1000, "comment": "take"}]}]}
	]}]`

	l := NewLoader(fakeCatalog{body: body}, tr, st, testLogger())
	movies, err := l.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(movies) != 1 || movies[0].Title != "Heist" || movies[0].Type != catalog.TypeStorytelling {
		t.Fatalf("movies = %+v", movies)
	}

	s := st.State()
	if s.MoviesLoading || s.MoviesError != "" || len(s.Movies) != 1 {
		t.Errorf("state loading=%v error=%q movies=%d", s.MoviesLoading, s.MoviesError, len(s.Movies))
	}
	if sub := s.Movies[0].Subscene("100"); sub == nil || len(sub.Videos) != 1 {
		t.Errorf("subscene 100 = %+v", sub)
	}
}

func TestLoader_RefreshFailure(t *testing.T) {
	st := store.New(testLogger())
	tr := catalog.NewTransformer("https://media.example.com/", nil)
	netErr := fmt.Errorf("%w: dial tcp: connection refused", cloud.ErrNetwork)

	l := NewLoader(fakeCatalog{err: netErr}, tr, st, testLogger())
	if _, err := l.Refresh(context.Background()); !errors.Is(err, cloud.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}

	s := st.State()
	if s.MoviesLoading {
		t.Error("still loading after failure")
	}
	if s.MoviesError != "Network error. Please check your internet connection and API URL." {
		t.Errorf("MoviesError = %q", s.MoviesError)
	}
}
