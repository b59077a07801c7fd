package player

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// Metadata holds track information shown in the header.
type Metadata struct {
	Title  string
	Artist string
	Album  string
}

// ReadMetadata reads ID3v2 tags, falling back to the file name. Names
// shaped like "Artist - Title.mp3" split into both fields.
func ReadMetadata(path string) Metadata {
	if tag, err := id3v2.Open(path, id3v2.Options{Parse: true}); err == nil {
		m := Metadata{
			Title:  strings.TrimSpace(tag.Title()),
			Artist: strings.TrimSpace(tag.Artist()),
			Album:  strings.TrimSpace(tag.Album()),
		}
		tag.Close()
		if m.Title != "" {
			return m
		}
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if artist, title, ok := strings.Cut(name, " - "); ok {
		return Metadata{
			Title:  strings.TrimSpace(title),
			Artist: strings.TrimSpace(artist),
		}
	}
	return Metadata{Title: name}
}
