package ui

import (
	"os"
	"testing"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(old) })
	return dir
}

func touch(t *testing.T, name string) {
	t.Helper()
	if err := os.WriteFile(name, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestNewBrowserListsAudioFiles(t *testing.T) {
	chdirTemp(t)
	touch(t, "b.mp3")
	touch(t, "a.flac")
	touch(t, "notes.txt")
	touch(t, "cover.png")

	m := NewBrowser()
	if m.HasError() {
		t.Fatalf("NewBrowser() error = %v", m.Error())
	}

	items := m.list.Items()
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	first, ok := items[0].(audioItem)
	if !ok || first.name != "a" || first.ext != ".flac" {
		t.Errorf("items[0] = %+v, want audioItem{a .flac}", items[0])
	}
	second, ok := items[1].(audioItem)
	if !ok || second.name != "b" || second.ext != ".mp3" {
		t.Errorf("items[1] = %+v, want audioItem{b .mp3}", items[1])
	}
}

func TestNewBrowserSkipsDirectories(t *testing.T) {
	chdirTemp(t)
	if err := os.Mkdir("album.mp3", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	touch(t, "track.ogg")

	m := NewBrowser()
	if m.HasError() {
		t.Fatalf("NewBrowser() error = %v", m.Error())
	}
	if got := len(m.list.Items()); got != 1 {
		t.Fatalf("len(items) = %d, want 1", got)
	}
}

func TestBrowserResultDefaultsToCancelled(t *testing.T) {
	var m BrowserModel
	if r := m.Result(); !r.Cancelled {
		t.Errorf("Result() = %+v, want cancelled", r)
	}
}
