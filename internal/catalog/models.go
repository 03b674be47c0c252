// Package catalog holds the canonical movie hierarchy and the transformer
// that builds it from the raw /load_scripts payload.
package catalog

// MovieType decides how many videos a subscene may contribute to a stitch.
type MovieType string

const (
	TypeMovies       MovieType = "movies"
	TypeScripts      MovieType = "scripts"
	TypeStorytelling MovieType = "storytelling"
)

// MultiChoice reports whether a subscene may hold several selected videos.
func (t MovieType) MultiChoice() bool {
	return t == TypeStorytelling
}

const StatusPublished = "published"

type Movie struct {
	ID          string    `json:"id"`
	SourceID    string    `json:"source_id,omitempty"`
	Title       string    `json:"title"`
	Thumbnail   string    `json:"thumbnail"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Type        MovieType `json:"type"`
	PDFURL      string    `json:"pdf_url,omitempty"`
	VideoURL    string    `json:"video_url,omitempty"`
	CreatedAt   string    `json:"created_at,omitempty"`
	UpdatedAt   string    `json:"updated_at,omitempty"`
	Scenes      []Scene   `json:"scenes"`
}

// Scene is an upstream "main set".
type Scene struct {
	ID        string     `json:"id"`
	MovieID   string     `json:"movie_id"`
	SourceID  string     `json:"source_id,omitempty"`
	ScriptID  string     `json:"script_id,omitempty"`
	Title     string     `json:"title"`
	Thumbnail string     `json:"thumbnail"`
	VideoURL  string     `json:"video_url"`
	ImageURL  string     `json:"image_url"`
	PDFURL    string     `json:"pdf_url,omitempty"`
	StartTime float64    `json:"start_time"`
	EndTime   *float64   `json:"end_time"`
	CreatedAt string     `json:"created_at,omitempty"`
	UpdatedAt string     `json:"updated_at,omitempty"`
	Subscenes []Subscene `json:"subscenes"`
}

// Subscene is an upstream "set": one slot that videos are chosen for.
type Subscene struct {
	ID           string   `json:"id"`
	SceneID      string   `json:"scene_id"`
	SourceID     string   `json:"source_id,omitempty"`
	Name         string   `json:"name"`
	Thumbnail    string   `json:"thumbnail"`
	VideoURL     string   `json:"video_url"`
	ImageURL     string   `json:"image_url,omitempty"`
	PDFURL       string   `json:"pdf_url,omitempty"`
	AWSJobID     string   `json:"aws_job_id,omitempty"`
	AWSJobStatus string   `json:"aws_job_status,omitempty"`
	StartTime    float64  `json:"start_time"`
	EndTime      *float64 `json:"end_time"`
	CreatedAt    string   `json:"created_at,omitempty"`
	UpdatedAt    string   `json:"updated_at,omitempty"`
	Videos       []Video  `json:"videos"`
}

// Video is an upstream "submission".
type Video struct {
	ID           string   `json:"id"`
	SubsceneID   string   `json:"subscene_id"`
	SubmissionID string   `json:"submission_id,omitempty"`
	Name         string   `json:"name"`
	Thumbnail    string   `json:"thumbnail"`
	VideoURL     string   `json:"video_url"`
	UserID       string   `json:"user_id,omitempty"`
	AWSJobID     string   `json:"aws_job_id,omitempty"`
	AWSJobStatus string   `json:"aws_job_status,omitempty"`
	CreatedAt    string   `json:"created_at,omitempty"`
	UpdatedAt    string   `json:"updated_at,omitempty"`
	Position     Position `json:"position"`
}

// Position is a video's place in its movie's layout.
type Position struct {
	Scene    int `json:"scene"`
	Subscene int `json:"subscene"`
	Video    int `json:"video"`
}

// Less orders positions scene first, then subscene, then video.
func (p Position) Less(o Position) bool {
	if p.Scene != o.Scene {
		return p.Scene < o.Scene
	}
	if p.Subscene != o.Subscene {
		return p.Subscene < o.Subscene
	}
	return p.Video < o.Video
}

// FindMovie returns the movie with id, or nil.
func FindMovie(movies []Movie, id string) *Movie {
	for i := range movies {
		if movies[i].ID == id {
			return &movies[i]
		}
	}
	return nil
}

func (m *Movie) Scene(id string) *Scene {
	for i := range m.Scenes {
		if m.Scenes[i].ID == id {
			return &m.Scenes[i]
		}
	}
	return nil
}

// Subscene searches every scene of the movie.
func (m *Movie) Subscene(id string) *Subscene {
	for i := range m.Scenes {
		if s := m.Scenes[i].Subscene(id); s != nil {
			return s
		}
	}
	return nil
}

func (s *Scene) Subscene(id string) *Subscene {
	for i := range s.Subscenes {
		if s.Subscenes[i].ID == id {
			return &s.Subscenes[i]
		}
	}
	return nil
}

func (s *Subscene) Video(id string) *Video {
	for i := range s.Videos {
		if s.Videos[i].ID == id {
			return &s.Videos[i]
		}
	}
	return nil
}

// Clone returns a deep copy of movies.
func Clone(movies []Movie) []Movie {
	if movies == nil {
		return nil
	}
	out := make([]Movie, len(movies))
	for i, m := range movies {
		out[i] = m
		out[i].Scenes = make([]Scene, len(m.Scenes))
		for j, sc := range m.Scenes {
			sc.EndTime = cloneFloat(sc.EndTime)
			sc.Subscenes = make([]Subscene, len(sc.Subscenes))
			for k, sub := range m.Scenes[j].Subscenes {
				sub.EndTime = cloneFloat(sub.EndTime)
				sub.Videos = append([]Video(nil), sub.Videos...)
				if sub.Videos == nil {
					sub.Videos = []Video{}
				}
				sc.Subscenes[k] = sub
			}
			out[i].Scenes[j] = sc
		}
	}
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
