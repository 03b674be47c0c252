package catalog

import (
	"testing"

	"github.com/moviestitch/moviestitch-client/internal/cloud"
)

func decode(t *testing.T, body string) []cloud.RawScript {
	t.Helper()
	scripts, err := cloud.DecodeScripts([]byte(body))
	if err != nil {
		t.Fatalf("DecodeScripts error: %v", err)
	}
	return scripts
}

func TestTransform_UntitledMovie(t *testing.T) {
	movies := NewTransformer(testBase, nil).Transform(decode(t, `[{"id": 1, "title": null, "main_sets": []}]`))

	if len(movies) != 1 {
		t.Fatalf("movies = %d, want 1", len(movies))
	}
	m := movies[0]
	if m.ID != "m1" {
		t.Errorf("id = %q, want m1", m.ID)
	}
	if m.Title != DefaultMovieTitle {
		t.Errorf("title = %q, want %q", m.Title, DefaultMovieTitle)
	}
	if m.Scenes == nil || len(m.Scenes) != 0 {
		t.Errorf("scenes = %v, want empty non-nil slice", m.Scenes)
	}
	if m.Status != StatusPublished || m.Type != TypeMovies || m.Description != "" {
		t.Errorf("defaults = status %q type %q description %q", m.Status, m.Type, m.Description)
	}
	if m.Thumbnail != placeholderPoster {
		t.Errorf("thumbnail = %q, want poster placeholder", m.Thumbnail)
	}
}

func TestTransform_FullHierarchy(t *testing.T) {
	body := `[{
		"id": 1, "title": "Heist", "type": "storytelling", "image_file_key": "posters/heist.jpg",
		"main_sets": [{
			"id": 10, "name": "Intro", "thumbnail_file_key": "https://cdn.example.com/t.jpg",
			"start_time": 2, "end_time": 0,
			"sets": [
				{"id": 100, "title": "Open", "end_time": "12.5", "submissions": [
					{"id": 1000, "comment": "take one", "video_file_key": "clips/1000.mp4", "user_id": 7},
					{"comment": "", "thumbnail_file_key": null}
				]},
				{"title": null, "submissions": null}
			]
		}, {
			"name": null, "sets": "broken"
		}]
	}]`

	movies := NewTransformer(testBase, nil).Transform(decode(t, body))
	m := movies[0]

	if m.Thumbnail != testBase+"posters/heist.jpg" {
		t.Errorf("movie thumbnail = %q", m.Thumbnail)
	}
	if !m.Type.MultiChoice() {
		t.Error("storytelling should be multi-choice")
	}
	if len(m.Scenes) != 2 {
		t.Fatalf("scenes = %d, want 2", len(m.Scenes))
	}

	intro := m.Scenes[0]
	if intro.ID != "10" || intro.MovieID != "m1" || intro.Title != "Intro" {
		t.Errorf("scene = id %q movie %q title %q", intro.ID, intro.MovieID, intro.Title)
	}
	if intro.Thumbnail != "https://cdn.example.com/t.jpg" {
		t.Errorf("scene thumbnail = %q", intro.Thumbnail)
	}
	if intro.VideoURL != placeholderVideo || intro.ImageURL != placeholderStill {
		t.Errorf("scene placeholders = video %q image %q", intro.VideoURL, intro.ImageURL)
	}
	if intro.StartTime != 2 || intro.EndTime != nil {
		t.Errorf("scene times = %v, %v; want 2, nil", intro.StartTime, intro.EndTime)
	}

	open := intro.Subscenes[0]
	if open.ID != "100" || open.SceneID != "10" || open.Name != "Open" {
		t.Errorf("subscene = %+v", open)
	}
	if open.EndTime == nil || *open.EndTime != 12.5 {
		t.Errorf("subscene end_time = %v, want 12.5", open.EndTime)
	}
	if open.ImageURL != "" {
		t.Errorf("optional image should stay empty, got %q", open.ImageURL)
	}

	if len(open.Videos) != 2 {
		t.Fatalf("videos = %d, want 2", len(open.Videos))
	}
	v0, v1 := open.Videos[0], open.Videos[1]
	if v0.ID != "1000" || v0.Name != "take one" || v0.UserID != "7" || v0.SubsceneID != "100" {
		t.Errorf("video 0 = %+v", v0)
	}
	if v0.VideoURL != testBase+"clips/1000.mp4" || v0.Thumbnail != placeholderClip {
		t.Errorf("video 0 media = %q, %q", v0.VideoURL, v0.Thumbnail)
	}
	if v1.ID != "100_2" || v1.Name != "Video 2" || v1.SubmissionID != "" {
		t.Errorf("video 1 fallback = id %q name %q", v1.ID, v1.Name)
	}
	if v1.Position != (Position{Scene: 0, Subscene: 0, Video: 1}) {
		t.Errorf("video 1 position = %+v", v1.Position)
	}

	unnamed := intro.Subscenes[1]
	if unnamed.ID != "10_2" || unnamed.Name != "Subscene 2" || len(unnamed.Videos) != 0 {
		t.Errorf("fallback subscene = %+v", unnamed)
	}

	second := m.Scenes[1]
	if second.ID != "1_2" || second.Title != "Scene 2" || len(second.Subscenes) != 0 {
		t.Errorf("fallback scene = id %q title %q subscenes %d", second.ID, second.Title, len(second.Subscenes))
	}
}

func TestTransform_FallbackIDsWithoutUpstreamIDs(t *testing.T) {
	body := `[{"title": "A"}, {"main_sets": [{"sets": [{"submissions": [{}]}]}]}]`
	movies := NewTransformer(testBase, nil).Transform(decode(t, body))

	if movies[0].ID != "m1" || movies[1].ID != "m2" {
		t.Fatalf("movie ids = %q, %q", movies[0].ID, movies[1].ID)
	}
	scene := movies[1].Scenes[0]
	if scene.ID != "m2_1" {
		t.Errorf("scene id = %q, want m2_1", scene.ID)
	}
	sub := scene.Subscenes[0]
	if sub.ID != "m2_1_1" {
		t.Errorf("subscene id = %q, want m2_1_1", sub.ID)
	}
	if sub.Videos[0].ID != "m2_1_1_1" {
		t.Errorf("video id = %q, want m2_1_1_1", sub.Videos[0].ID)
	}
}

func TestTransform_SiblingIDsUnique(t *testing.T) {
	body := `[
		{"id": 1}, {"id": 1},
		{"id": 3, "main_sets": [{"id": 5}, {"id": 5}, {"id": "5_2"}]}
	]`
	movies := NewTransformer(testBase, nil).Transform(decode(t, body))

	if movies[0].ID != "m1" || movies[1].ID != "m1_2" {
		t.Errorf("duplicate movie ids = %q, %q", movies[0].ID, movies[1].ID)
	}

	seen := map[string]bool{}
	for _, s := range movies[2].Scenes {
		if seen[s.ID] {
			t.Errorf("scene id %q repeated", s.ID)
		}
		seen[s.ID] = true
	}
}

func TestTransform_NeverEmpty(t *testing.T) {
	payloads := []string{
		`[]`,
		`[null, 1, "x", [], {}]`,
		`[{"main_sets": [null, 5, {"sets": [null, {"submissions": [null, 3, {"id": null}]}]}]}]`,
		`[{"id": {}, "title": [], "image_file_key": 12, "main_sets": {"0": {}}}]`,
		`[{"main_sets": [{"thumbnail_file_key": "", "sets": [{"video_file_key": "  ", "submissions": [{"video_file_key": ""}]}]}]}]`,
	}

	tr := NewTransformer(testBase, nil)
	for _, body := range payloads {
		for _, m := range tr.Transform(decode(t, body)) {
			if m.ID == "" || m.Thumbnail == "" || m.Title == "" {
				t.Errorf("%s: movie with empty field: %+v", body, m)
			}
			for _, s := range m.Scenes {
				if s.ID == "" || s.Thumbnail == "" || s.VideoURL == "" || s.ImageURL == "" {
					t.Errorf("%s: scene with empty field: %+v", body, s)
				}
				for _, sub := range s.Subscenes {
					if sub.ID == "" || sub.Thumbnail == "" || sub.VideoURL == "" {
						t.Errorf("%s: subscene with empty field: %+v", body, sub)
					}
					for _, v := range sub.Videos {
						if v.ID == "" || v.Thumbnail == "" || v.VideoURL == "" {
							t.Errorf("%s: video with empty field: %+v", body, v)
						}
					}
				}
			}
		}
	}
}

func TestTransform_InjectedPlaceholders(t *testing.T) {
	p, err := DefaultPlaceholders().WithOverrides(map[string]string{
		"video_thumbnail": "https://test/thumb.png",
		"video_file":      "https://test/blank.mp4",
	})
	if err != nil {
		t.Fatal(err)
	}

	movies := NewTransformer(testBase, p).Transform(decode(t, `[{"main_sets": [{"sets": [{"submissions": [{"id": 1}]}]}]}]`))
	v := movies[0].Scenes[0].Subscenes[0].Videos[0]
	if v.Thumbnail != "https://test/thumb.png" || v.VideoURL != "https://test/blank.mp4" {
		t.Errorf("video media = %q, %q", v.Thumbnail, v.VideoURL)
	}
}

func TestTransformer_Video(t *testing.T) {
	tr := NewTransformer(testBase, nil)
	sub := &Subscene{ID: "100", SourceID: "100"}

	v := tr.Video(cloud.RawSubmission{Comment: "late entry", VideoFileKey: "clips/new.mp4"}, sub, 3)
	if v.ID != "100_4" || v.Name != "late entry" || v.SubsceneID != "100" {
		t.Errorf("video = %+v", v)
	}
	if v.VideoURL != testBase+"clips/new.mp4" {
		t.Errorf("video url = %q", v.VideoURL)
	}
}

func TestClone_Independent(t *testing.T) {
	end := 4.0
	orig := []Movie{{ID: "m1", Scenes: []Scene{{ID: "s1", EndTime: &end, Subscenes: []Subscene{{ID: "ss1", Videos: []Video{{ID: "v1"}}}}}}}}

	cp := Clone(orig)
	cp[0].Scenes[0].Subscenes[0].Videos[0].Name = "changed"
	*cp[0].Scenes[0].EndTime = 9

	if orig[0].Scenes[0].Subscenes[0].Videos[0].Name != "" {
		t.Error("clone shares video storage")
	}
	if *orig[0].Scenes[0].EndTime != 4 {
		t.Error("clone shares end time")
	}
}
