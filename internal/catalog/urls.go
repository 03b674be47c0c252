package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// MediaKind names a media field that must never resolve to an empty URL.
type MediaKind string

const (
	MediaMovieThumbnail    MediaKind = "movie_thumbnail"
	MediaSceneThumbnail    MediaKind = "scene_thumbnail"
	MediaSceneVideo        MediaKind = "scene_video"
	MediaSceneImage        MediaKind = "scene_image"
	MediaSubsceneThumbnail MediaKind = "subscene_thumbnail"
	MediaSubsceneVideo     MediaKind = "subscene_video"
	MediaVideoThumbnail    MediaKind = "video_thumbnail"
	MediaVideoFile         MediaKind = "video_file"
)

const (
	placeholderPoster = "https://images.pexels.com/photos/275977/pexels-photo-275977.jpeg"
	placeholderStill  = "https://images.pexels.com/photos/3062545/pexels-photo-3062545.jpeg"
	placeholderClip   = "https://images.pexels.com/photos/7319480/pexels-photo-7319480.jpeg"
	placeholderVideo  = "https://cdn.pixabay.com/video/2022/01/23/105438-670487243_large.mp4"
)

var defaultPlaceholders = Placeholders{
	MediaMovieThumbnail:    placeholderPoster,
	MediaSceneThumbnail:    placeholderStill,
	MediaSceneVideo:        placeholderVideo,
	MediaSceneImage:        placeholderStill,
	MediaSubsceneThumbnail: placeholderStill,
	MediaSubsceneVideo:     placeholderVideo,
	MediaVideoThumbnail:    placeholderClip,
	MediaVideoFile:         placeholderVideo,
}

// Placeholders maps each media kind to the URL used when upstream has no
// file key for it.
type Placeholders map[MediaKind]string

// DefaultPlaceholders returns a fresh copy of the built-in table.
func DefaultPlaceholders() Placeholders {
	out := make(Placeholders, len(defaultPlaceholders))
	for k, v := range defaultPlaceholders {
		out[k] = v
	}
	return out
}

// WithOverrides returns a copy of p with the given kind -> URL entries
// replaced. Unknown kinds are an error.
func (p Placeholders) WithOverrides(overrides map[string]string) (Placeholders, error) {
	out := make(Placeholders, len(p))
	for k, v := range p {
		out[k] = v
	}
	for kind, u := range overrides {
		if _, ok := defaultPlaceholders[MediaKind(kind)]; !ok {
			return nil, fmt.Errorf("unknown media kind %q", kind)
		}
		out[MediaKind(kind)] = u
	}
	return out, nil
}

// URL returns the placeholder for kind, falling back to the built-in table
// when p has no usable entry.
func (p Placeholders) URL(kind MediaKind) string {
	if u := p[kind]; u != "" {
		return u
	}
	return defaultPlaceholders[kind]
}

var absoluteURL = regexp.MustCompile(`(?i)^https?://`)

// NormalizeURL resolves a raw file key against the media base URL. Keys that
// carry a doubled "https://" prefix are cut to the last occurrence; absolute
// http(s) URLs are kept; anything else is joined to base. An empty key stays
// empty.
func NormalizeURL(raw, base string) string {
	key := strings.TrimSpace(raw)
	if key == "" {
		return ""
	}

	if strings.Count(key, "https://") >= 2 {
		key = key[strings.LastIndex(key, "https://"):]
	}

	if absoluteURL.MatchString(key) {
		return key
	}

	if strings.HasSuffix(base, "/") {
		key = strings.TrimLeft(key, "/")
	}
	return base + key
}
