package lectures

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"ocwsync/internal/content"
	"ocwsync/internal/fileutil"
)

// LoadCache reads a lectures.json file. ok is false when the file is absent.
func LoadCache(path string) (lectures []content.LectureCandidate, ok bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read lecture cache: %w", err)
	}
	if err := json.Unmarshal(data, &lectures); err != nil {
		return nil, false, fmt.Errorf("decode lecture cache: %w", err)
	}
	return lectures, true, nil
}

// SaveCache writes lectures to path atomically.
func SaveCache(path string, lectures []content.LectureCandidate) error {
	data, err := json.MarshalIndent(lectures, "", "  ")
	if err != nil {
		return fmt.Errorf("encode lecture cache: %w", err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}

// RemoveCache deletes the cache file at path. removed is false when there was
// nothing to delete.
func RemoveCache(path string) (removed bool, err error) {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("remove lecture cache: %w", err)
	}
	return true, nil
}
