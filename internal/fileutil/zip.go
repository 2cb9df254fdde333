package fileutil

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafeArchivePath marks an archive entry that would land outside the
// extraction directory.
var ErrUnsafeArchivePath = errors.New("archive entry escapes destination")

// ExtractZip unpacks the archive at src into dest, overwriting existing
// files. It returns the number of regular files written.
func ExtractZip(src, dest string) (int, error) {
	zr, err := zip.OpenReader(src)
	if errors.Is(err, zip.ErrInsecurePath) {
		if zr != nil {
			_ = zr.Close()
		}
		return 0, fmt.Errorf("%w: %v", ErrUnsafeArchivePath, err)
	}
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	root, err := filepath.Abs(dest)
	if err != nil {
		return 0, fmt.Errorf("resolve destination: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return 0, fmt.Errorf("create destination: %w", err)
	}

	count := 0
	for _, f := range zr.File {
		target, err := safeJoin(root, f.Name)
		if err != nil {
			return count, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return count, fmt.Errorf("create %s: %w", f.Name, err)
			}
			continue
		}
		if !f.Mode().IsRegular() {
			continue
		}
		if err := extractEntry(f, target); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func safeJoin(root, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafeArchivePath, name)
	}
	target := filepath.Join(root, cleaned)
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafeArchivePath, name)
	}
	return target, nil
}

func extractEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(f.Name), err)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", f.Name, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return out.Close()
}

// ContentRoot returns the single top-level directory inside dir when that is
// the only entry, otherwise dir itself.
func ContentRoot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read extraction dir: %w", err)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(dir, entries[0].Name()), nil
	}
	return dir, nil
}

// FindFiles walks root and returns every regular file accepted by match,
// in lexical order.
func FindFiles(root string, match func(path string) bool) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && match(path) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}
