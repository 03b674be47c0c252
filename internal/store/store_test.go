package store

import (
	"io"
	"log/slog"
	"sync"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestStore_SnapshotsAreIndependent(t *testing.T) {
	s := New(testLogger())
	s.Dispatch(MoviesLoaded{Movies: testMovies()})

	snap := s.State()
	snap.Movies[0].Title = "changed"
	snap.Selection["s1"] = nil
	snap.Jobs[JobStream] = Job{Status: JobFailed}

	fresh := s.State()
	if fresh.Movies[0].Title == "changed" {
		t.Error("snapshot shares movies with the store")
	}
	if _, ok := fresh.Selection["s1"]; ok {
		t.Error("snapshot shares selection with the store")
	}
	if fresh.Jobs[JobStream].Status != JobIdle {
		t.Error("snapshot shares jobs with the store")
	}
}

func TestStore_Subscribe(t *testing.T) {
	s := New(testLogger())

	var got []State
	unsubscribe := s.Subscribe(func(st State) { got = append(got, st) })

	s.Dispatch(AIModeSet{Enabled: true})
	if len(got) != 1 || !got[0].AIMode {
		t.Fatalf("listener got %d states, want 1 with AI mode", len(got))
	}

	unsubscribe()
	s.Dispatch(AIModeSet{Enabled: false})
	if len(got) != 1 {
		t.Errorf("listener called %d times after unsubscribe", len(got))
	}
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	s := New(testLogger())
	s.Dispatch(MoviesLoaded{Movies: testMovies()})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Dispatch(SelectModeSet{SceneID: string(rune('a' + i%26)), Enabled: true})
			_ = s.State()
		}(i)
	}
	wg.Wait()

	if n := len(s.State().SelectMode); n != 26 {
		t.Errorf("SelectMode has %d scenes, want 26", n)
	}
}
