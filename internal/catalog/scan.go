package catalog

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"media-merger/internal/domain"
)

// videoExtensions and audioExtensions are the fixed classification
// allow-lists, matched case-insensitively against file extensions.
var videoExtensions = map[string]struct{}{
	".mp4": {}, ".avi": {}, ".mkv": {}, ".mov": {},
	".wmv": {}, ".flv": {}, ".webm": {}, ".m4v": {},
}

var audioExtensions = map[string]struct{}{
	".m4a": {}, ".mp3": {}, ".aac": {}, ".wav": {},
	".flac": {}, ".ogg": {}, ".wma": {}, ".mka": {},
}

// Scanner walks a directory tree and classifies media files by
// extension. OS access is injected for tests.
type Scanner struct {
	walkDir func(root string, fn fs.WalkDirFunc) error
	stat    func(name string) (os.FileInfo, error)
}

// NewScanner builds a scanner using real filesystem access.
func NewScanner() *Scanner {
	return &Scanner{
		walkDir: filepath.WalkDir,
		stat:    os.Stat,
	}
}

// Scan walks root and returns a catalog of recognized media files.
// With recursive false only direct children of root are considered.
// Unreadable subdirectories are skipped rather than aborting the scan.
func (s *Scanner) Scan(root string, recursive bool) (*Catalog, error) {
	info, err := s.stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "scan", Path: root, Err: fs.ErrInvalid}
	}

	cat := New()
	err = s.walkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			if !recursive && path != root {
				return fs.SkipDir
			}
			return nil
		}

		if file, ok := Classify(path); ok {
			cat.Add(file)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// Classify maps a path to a MediaFile when its extension is on one of
// the allow-lists.
func Classify(path string) (domain.MediaFile, bool) {
	ext := strings.ToLower(filepath.Ext(path))

	var kind domain.MediaKind
	if _, ok := videoExtensions[ext]; ok {
		kind = domain.MediaKindVideo
	} else if _, ok := audioExtensions[ext]; ok {
		kind = domain.MediaKindAudio
	} else {
		return domain.MediaFile{}, false
	}

	base := filepath.Base(path)
	return domain.MediaFile{
		Path:      path,
		Stem:      strings.TrimSuffix(base, filepath.Ext(base)),
		Extension: filepath.Ext(base),
		Kind:      kind,
	}, true
}

// NewScannerForTests builds a scanner with injectable filesystem access.
func NewScannerForTests(
	walkDir func(root string, fn fs.WalkDirFunc) error,
	stat func(name string) (os.FileInfo, error),
) *Scanner {
	return &Scanner{walkDir: walkDir, stat: stat}
}
