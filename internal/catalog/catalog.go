package catalog

import (
	"media-merger/internal/domain"
)

// Catalog holds discovered media files partitioned by kind, preserving
// discovery order. Matching depends on that order, so the catalog never
// re-sorts what the scanner produced.
type Catalog struct {
	videos []domain.MediaFile
	audios []domain.MediaFile
	byPath map[string]struct{}
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{byPath: map[string]struct{}{}}
}

// Add records one file under its kind. Files with a path already in the
// catalog are ignored so a rescan cannot duplicate entries.
func (c *Catalog) Add(file domain.MediaFile) {
	if _, seen := c.byPath[file.Path]; seen {
		return
	}
	c.byPath[file.Path] = struct{}{}

	switch file.Kind {
	case domain.MediaKindVideo:
		c.videos = append(c.videos, file)
	case domain.MediaKindAudio:
		c.audios = append(c.audios, file)
	}
}

// Videos returns video descriptors in discovery order.
func (c *Catalog) Videos() []domain.MediaFile {
	out := make([]domain.MediaFile, len(c.videos))
	copy(out, c.videos)
	return out
}

// Audios returns audio descriptors in discovery order.
func (c *Catalog) Audios() []domain.MediaFile {
	out := make([]domain.MediaFile, len(c.audios))
	copy(out, c.audios)
	return out
}

// VideoCount reports the number of discovered video files.
func (c *Catalog) VideoCount() int { return len(c.videos) }

// AudioCount reports the number of discovered audio files.
func (c *Catalog) AudioCount() int { return len(c.audios) }
