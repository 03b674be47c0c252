package upload

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// NormalizeFilename picks the name sent to the presign endpoint. The device
// name wins, then the last path segment if it has an extension, then a
// timestamped default. The result only contains [A-Za-z0-9._-] and always
// ends in .mp4.
func NormalizeFilename(deviceName, path string, now time.Time) string {
	name := deviceName
	if name == "" {
		if seg := lastSegment(path); strings.Contains(seg, ".") {
			name = seg
		}
	}
	if name == "" {
		name = fmt.Sprintf("video_%d.mp4", now.UnixMilli())
	}

	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if !strings.HasSuffix(strings.ToLower(name), ".mp4") {
		name += ".mp4"
	}
	return name
}

// lastSegment splits on both separators so URIs and Windows paths behave
// the same.
func lastSegment(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
