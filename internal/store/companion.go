package store

import (
	"os"
	"path/filepath"
	"strings"
)

// FindCompanionVideo looks next to the timestamp file for a file with
// the same name and a different extension and returns the first match.
// This is the convention of keeping video.tmsp beside video.mkv.
func FindCompanionVideo(tmspPath string) (string, bool) {
	dir := filepath.Dir(tmspPath)
	base := filepath.Base(tmspPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		name := entry.Name()
		if name == base || entry.IsDir() {
			continue
		}
		if strings.TrimSuffix(name, filepath.Ext(name)) == stem {
			return filepath.Join(dir, name), true
		}
	}
	return "", false
}
