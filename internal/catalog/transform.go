package catalog

import (
	"strconv"

	"github.com/moviestitch/moviestitch-client/internal/cloud"
)

const (
	DefaultMovieTitle = "Untitled Movie"
	DefaultMovieType  = TypeMovies
)

// Transformer converts raw scripts into the movie hierarchy. It holds only
// configuration, so one value can be shared freely.
type Transformer struct {
	mediaBaseURL string
	placeholders Placeholders
}

// NewTransformer builds a Transformer. A nil placeholder table uses the
// built-in defaults.
func NewTransformer(mediaBaseURL string, placeholders Placeholders) *Transformer {
	if placeholders == nil {
		placeholders = DefaultPlaceholders()
	}
	return &Transformer{mediaBaseURL: mediaBaseURL, placeholders: placeholders}
}

// Transform maps every raw script to a Movie, preserving order at every
// level. It performs no I/O and never fails; missing or malformed nested
// arrays yield empty children.
func (t *Transformer) Transform(scripts []cloud.RawScript) []Movie {
	movies := make([]Movie, 0, len(scripts))
	ids := idSet{}
	for i, raw := range scripts {
		movies = append(movies, t.movie(raw, i, ids))
	}
	return movies
}

func (t *Transformer) movie(raw cloud.RawScript, index int, siblings idSet) Movie {
	id := "m" + strconv.Itoa(index+1)
	if raw.ID != "" {
		id = "m" + string(raw.ID)
	}

	m := Movie{
		ID:          siblings.claim(id, index),
		SourceID:    string(raw.ID),
		Title:       orDefault(raw.Title, DefaultMovieTitle),
		Thumbnail:   t.media(raw.ImageFileKey, MediaMovieThumbnail),
		Description: string(raw.Description),
		Status:      orDefault(raw.Status, StatusPublished),
		Type:        MovieType(orDefault(raw.Type, string(DefaultMovieType))),
		PDFURL:      t.url(raw.PDFFileKey),
		VideoURL:    t.url(raw.VideoFileKey),
		CreatedAt:   string(raw.CreatedAt),
		UpdatedAt:   string(raw.UpdatedAt),
	}

	prefix := parentKey(raw.ID, m.ID)
	ids := idSet{}
	m.Scenes = make([]Scene, 0, len(raw.MainSets))
	for i, mainSet := range raw.MainSets {
		m.Scenes = append(m.Scenes, t.scene(mainSet, m.ID, prefix, i, ids))
	}
	return m
}

func (t *Transformer) scene(raw cloud.RawMainSet, movieID, parent string, index int, siblings idSet) Scene {
	s := Scene{
		ID:        siblings.claim(fallbackID(raw.ID, parent, index), index),
		MovieID:   movieID,
		SourceID:  string(raw.ID),
		ScriptID:  string(raw.ScriptID),
		Title:     orDefault(raw.Name, "Scene "+strconv.Itoa(index+1)),
		Thumbnail: t.media(raw.ThumbnailFileKey, MediaSceneThumbnail),
		VideoURL:  t.media(raw.VideoFileKey, MediaSceneVideo),
		ImageURL:  t.media(raw.ImageFileKey, MediaSceneImage),
		PDFURL:    t.url(raw.PDFFileKey),
		StartTime: startTime(raw.StartTime),
		EndTime:   endTime(raw.EndTime),
		CreatedAt: string(raw.CreatedAt),
		UpdatedAt: string(raw.UpdatedAt),
	}

	prefix := parentKey(raw.ID, s.ID)
	ids := idSet{}
	s.Subscenes = make([]Subscene, 0, len(raw.Sets))
	for i, set := range raw.Sets {
		sub := t.subscene(set, s.ID, prefix, i, ids)
		for j := range sub.Videos {
			sub.Videos[j].Position = Position{Scene: index, Subscene: i, Video: j}
		}
		s.Subscenes = append(s.Subscenes, sub)
	}
	return s
}

func (t *Transformer) subscene(raw cloud.RawSet, sceneID, parent string, index int, siblings idSet) Subscene {
	s := Subscene{
		ID:           siblings.claim(fallbackID(raw.ID, parent, index), index),
		SceneID:      sceneID,
		SourceID:     string(raw.ID),
		Name:         orDefault(raw.Title, "Subscene "+strconv.Itoa(index+1)),
		Thumbnail:    t.media(raw.ThumbnailFileKey, MediaSubsceneThumbnail),
		VideoURL:     t.media(raw.VideoFileKey, MediaSubsceneVideo),
		ImageURL:     t.url(raw.ImageFileKey),
		PDFURL:       t.url(raw.PDFFileKey),
		AWSJobID:     string(raw.AWSJobID),
		AWSJobStatus: string(raw.AWSJobStatus),
		StartTime:    startTime(raw.StartTime),
		EndTime:      endTime(raw.EndTime),
		CreatedAt:    string(raw.CreatedAt),
		UpdatedAt:    string(raw.UpdatedAt),
	}

	prefix := parentKey(raw.ID, s.ID)
	ids := idSet{}
	s.Videos = make([]Video, 0, len(raw.Submissions))
	for i, submission := range raw.Submissions {
		v := t.video(submission, s.ID, prefix, i)
		v.ID = ids.claim(v.ID, i)
		s.Videos = append(s.Videos, v)
	}
	return s
}

// Video converts one submission into a Video of sub, as if it sat at index.
// The caller assigns Position.
func (t *Transformer) Video(raw cloud.RawSubmission, sub *Subscene, index int) Video {
	return t.video(raw, sub.ID, parentKey(cloud.FlexString(sub.SourceID), sub.ID), index)
}

func (t *Transformer) video(raw cloud.RawSubmission, subsceneID, parent string, index int) Video {
	return Video{
		ID:           fallbackID(raw.ID, parent, index),
		SubsceneID:   subsceneID,
		SubmissionID: string(raw.ID),
		Name:         orDefault(raw.Comment, "Video "+strconv.Itoa(index+1)),
		Thumbnail:    t.media(raw.ThumbnailFileKey, MediaVideoThumbnail),
		VideoURL:     t.media(raw.VideoFileKey, MediaVideoFile),
		UserID:       string(raw.UserID),
		AWSJobID:     string(raw.AWSJobID),
		AWSJobStatus: string(raw.AWSJobStatus),
		CreatedAt:    string(raw.CreatedAt),
		UpdatedAt:    string(raw.UpdatedAt),
	}
}

// media resolves a required media field, falling back to the placeholder.
func (t *Transformer) media(key cloud.FlexString, kind MediaKind) string {
	if u := t.url(key); u != "" {
		return u
	}
	return t.placeholders.URL(kind)
}

func (t *Transformer) url(key cloud.FlexString) string {
	return NormalizeURL(string(key), t.mediaBaseURL)
}

// idSet hands out ids unique among one level of siblings.
type idSet map[string]struct{}

func (s idSet) claim(id string, index int) string {
	for {
		if _, taken := s[id]; !taken {
			s[id] = struct{}{}
			return id
		}
		id = id + "_" + strconv.Itoa(index+1)
	}
}

// parentKey is the prefix children use for fallback ids: the upstream id
// when there is one, otherwise the resolved id.
func parentKey(upstream cloud.FlexString, resolved string) string {
	if upstream != "" {
		return string(upstream)
	}
	return resolved
}

func fallbackID(id cloud.FlexString, parent string, index int) string {
	if id != "" {
		return string(id)
	}
	return parent + "_" + strconv.Itoa(index+1)
}

func orDefault(v cloud.FlexString, def string) string {
	if v == "" {
		return def
	}
	return string(v)
}

func startTime(f cloud.FlexFloat) float64 {
	if !f.Valid {
		return 0
	}
	return f.Value
}

// endTime treats zero like absent.
func endTime(f cloud.FlexFloat) *float64 {
	if !f.Valid || f.Value == 0 {
		return nil
	}
	v := f.Value
	return &v
}
