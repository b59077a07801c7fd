package player

import "testing"

func TestReadMetadataFallsBackToFilename(t *testing.T) {
	m := ReadMetadata("/music/midnight drive.mp3")
	if m.Title != "midnight drive" {
		t.Fatalf("Title = %q, want %q", m.Title, "midnight drive")
	}
	if m.Artist != "" {
		t.Fatalf("Artist = %q, want empty", m.Artist)
	}
}

func TestReadMetadataSplitsArtistFromFilename(t *testing.T) {
	m := ReadMetadata("/music/Nils Frahm - Says.flac")
	if m.Artist != "Nils Frahm" {
		t.Fatalf("Artist = %q, want %q", m.Artist, "Nils Frahm")
	}
	if m.Title != "Says" {
		t.Fatalf("Title = %q, want %q", m.Title, "Says")
	}
}
