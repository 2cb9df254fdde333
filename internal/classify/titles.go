package classify

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"ocwsync/internal/fileutil"
)

type resourceRecord struct {
	Title string `json:"title"`
	File  string `json:"file"`
}

// LoadTitleMap maps original PDF filenames to their human titles using every
// resources/**/data.json under contentRoot. Malformed records are skipped.
func LoadTitleMap(contentRoot string) (map[string]string, error) {
	titles := make(map[string]string)
	dir := filepath.Join(contentRoot, "resources")
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return titles, nil
	}
	files, err := fileutil.FindFiles(dir, func(path string) bool {
		return filepath.Base(path) == "data.json"
	})
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		var record resourceRecord
		if json.Unmarshal(data, &record) != nil {
			continue
		}
		title := strings.TrimSpace(record.Title)
		if title == "" || record.File == "" {
			continue
		}
		name := record.File[strings.LastIndex(record.File, "/")+1:]
		if name == "" || !strings.HasSuffix(strings.ToLower(name), ".pdf") {
			continue
		}
		titles[name] = title
	}
	return titles, nil
}
