package voice

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PurgeAudio removes synthesized *.mp3 files in dir last modified before
// cutoff and returns how many were deleted.  Other files are left alone.
func PurgeAudio(dir string, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".mp3") {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
			n++
		}
	}
	return n, nil
}
