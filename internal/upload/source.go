package upload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Media is where a clip comes from.
type Media string

const (
	MediaCamera  Media = "camera"
	MediaLibrary Media = "library"
)

// Asset is a captured or picked clip.
type Asset struct {
	Path string
	// Name is the filename reported by the device, if any.
	Name string
}

// MediaSource is the device side of an upload: permission prompts and the
// capture or pick dialog. Acquire returns a nil Asset when the user cancels.
type MediaSource interface {
	RequestPermission(ctx context.Context, media Media) (bool, error)
	Acquire(ctx context.Context, media Media) (*Asset, error)
}

// FileSource uploads a file that already exists on disk. An empty Path is
// treated as a cancelled pick.
type FileSource struct {
	Path string
	Name string
}

func (s FileSource) RequestPermission(_ context.Context, _ Media) (bool, error) {
	if s.Path == "" {
		return true, nil
	}
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return false, nil
		}
		// Missing files are reported when the file is opened for upload.
		return true, nil
	}
	f.Close()
	return true, nil
}

func (s FileSource) Acquire(_ context.Context, _ Media) (*Asset, error) {
	if s.Path == "" {
		return nil, nil
	}
	info, err := os.Stat(s.Path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", s.Path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", s.Path)
	}
	return &Asset{Path: s.Path, Name: s.Name}, nil
}
