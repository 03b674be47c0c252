// Package selection tracks which videos are chosen per subscene for one
// stitch and derives the submission payload from that record.
//
// Every operation is a pure function from one Record to a new Record; the
// input is never modified.
package selection

import (
	"math/rand/v2"
	"sort"

	"github.com/moviestitch/moviestitch-client/internal/catalog"
)

// Record maps subscene id -> video id -> video.
type Record map[string]map[string]catalog.Video

// RandomSource yields a uniform index in [0, n). *math/rand/v2.Rand
// satisfies it.
type RandomSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource draws from the math/rand/v2 global generator and is safe
// for concurrent use.
var DefaultSource RandomSource = globalSource{}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for subsceneID, videos := range r {
		inner := make(map[string]catalog.Video, len(videos))
		for id, v := range videos {
			inner[id] = v
		}
		out[subsceneID] = inner
	}
	return out
}

// Equal reports whether r and o select exactly the same videos.
func (r Record) Equal(o Record) bool {
	if len(r) != len(o) {
		return false
	}
	for subsceneID, videos := range r {
		other, ok := o[subsceneID]
		if !ok || len(other) != len(videos) {
			return false
		}
		for id, v := range videos {
			if ov, ok := other[id]; !ok || ov != v {
				return false
			}
		}
	}
	return true
}

// IsSelected reports whether videoID is chosen for subsceneID.
func (r Record) IsSelected(subsceneID, videoID string) bool {
	_, ok := r[subsceneID][videoID]
	return ok
}

// Count returns the number of selected videos across all subscenes.
func (r Record) Count() int {
	n := 0
	for _, videos := range r {
		n += len(videos)
	}
	return n
}

// Toggle selects v for subsceneID, or deselects it if already selected.
// For single-choice movie types a selection replaces whatever the subscene
// held before.
func Toggle(r Record, subsceneID string, v catalog.Video, t catalog.MovieType) Record {
	out := r.Clone()

	if out.IsSelected(subsceneID, v.ID) {
		delete(out[subsceneID], v.ID)
		if len(out[subsceneID]) == 0 {
			delete(out, subsceneID)
		}
		return out
	}

	if !t.MultiChoice() || out[subsceneID] == nil {
		out[subsceneID] = make(map[string]catalog.Video, 1)
	}
	out[subsceneID][v.ID] = v
	return out
}

// SelectRandom replaces the selection of every subscene of scene that has
// videos with one video picked uniformly at random. Subscenes without
// videos are left unselected.
func SelectRandom(r Record, scene *catalog.Scene, src RandomSource) Record {
	out := r.Clone()
	if scene == nil {
		return out
	}

	for _, sub := range scene.Subscenes {
		delete(out, sub.ID)
		if v, ok := pickOne(sub.Videos, src); ok {
			out[sub.ID] = map[string]catalog.Video{v.ID: v}
		}
	}
	return out
}

// ClearScene drops the selection of every subscene of scene.
func ClearScene(r Record, scene *catalog.Scene) Record {
	out := r.Clone()
	if scene == nil {
		return out
	}
	for _, sub := range scene.Subscenes {
		delete(out, sub.ID)
	}
	return out
}

// Clear returns an empty record.
func Clear() Record {
	return Record{}
}

// pickOne returns a uniformly chosen video, or false for an empty list.
func pickOne(videos []catalog.Video, src RandomSource) (catalog.Video, bool) {
	if len(videos) == 0 {
		return catalog.Video{}, false
	}
	return videos[src.IntN(len(videos))], true
}

// Entry is one subscene's contribution to a stitch.
type Entry struct {
	SubsceneID string   `json:"subscene_id"`
	VideoIDs   []string `json:"video_ids"`
}

// Payload is the ordered submission derived from a Record.
type Payload []Entry

// Derive projects r into a payload ordered by where the videos sit in the
// movie layout. Ties fall back to subscene id, then video id.
func Derive(r Record) Payload {
	type item struct {
		subsceneID string
		video      catalog.Video
	}

	items := make([]item, 0, r.Count())
	for subsceneID, videos := range r {
		for _, v := range videos {
			items = append(items, item{subsceneID: subsceneID, video: v})
		}
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.video.Position != b.video.Position {
			return a.video.Position.Less(b.video.Position)
		}
		if a.subsceneID != b.subsceneID {
			return a.subsceneID < b.subsceneID
		}
		return a.video.ID < b.video.ID
	})

	var payload Payload
	index := make(map[string]int)
	for _, it := range items {
		i, ok := index[it.subsceneID]
		if !ok {
			i = len(payload)
			index[it.subsceneID] = i
			payload = append(payload, Entry{SubsceneID: it.subsceneID})
		}
		payload[i].VideoIDs = append(payload[i].VideoIDs, it.video.ID)
	}
	return payload
}

// Flatten returns every video id in order. Used for multi-choice movies.
func (p Payload) Flatten() []string {
	out := []string{}
	for _, e := range p {
		out = append(out, e.VideoIDs...)
	}
	return out
}

// OnePerSubscene returns the first video id of every subscene. Used for
// single-choice movies.
func (p Payload) OnePerSubscene() []string {
	out := []string{}
	for _, e := range p {
		if len(e.VideoIDs) > 0 {
			out = append(out, e.VideoIDs[0])
		}
	}
	return out
}

// For returns the ids to send for a movie of type t.
func (p Payload) For(t catalog.MovieType) []string {
	if t.MultiChoice() {
		return p.Flatten()
	}
	return p.OnePerSubscene()
}

// ChoiceFunc reports whether a subscene belongs to a multi-choice movie.
type ChoiceFunc func(subsceneID string) bool

// Resolve returns the ids to send when subscenes may belong to movies of
// different types: every id of a multi-choice subscene, the first id of any
// other.
func (p Payload) Resolve(multi ChoiceFunc) []string {
	out := []string{}
	for _, e := range p {
		if len(e.VideoIDs) == 0 {
			continue
		}
		if multi != nil && multi(e.SubsceneID) {
			out = append(out, e.VideoIDs...)
		} else {
			out = append(out, e.VideoIDs[0])
		}
	}
	return out
}

// AutoPick builds a payload without consulting any Record: for every scene
// of movie, one random video of its first subscene. Scenes whose first
// subscene has no videos contribute nothing.
func AutoPick(movie *catalog.Movie, src RandomSource) Payload {
	var payload Payload
	if movie == nil {
		return payload
	}
	for _, scene := range movie.Scenes {
		if len(scene.Subscenes) == 0 {
			continue
		}
		first := scene.Subscenes[0]
		if v, ok := pickOne(first.Videos, src); ok {
			payload = append(payload, Entry{SubsceneID: first.ID, VideoIDs: []string{v.ID}})
		}
	}
	return payload
}
