package media

import (
	"strings"
	"testing"
)

func TestIsSupportedExtCoversDecoders(t *testing.T) {
	for _, ext := range []string{".mp3", ".wav", ".flac", ".ogg", ".oga", ".MP3"} {
		if !IsSupportedExt(ext) {
			t.Errorf("IsSupportedExt(%q) = false, want true", ext)
		}
	}
	for _, ext := range []string{".aac", ".m4a", ".txt", ""} {
		if IsSupportedExt(ext) {
			t.Errorf("IsSupportedExt(%q) = true, want false", ext)
		}
	}
}

func TestIsImageExt(t *testing.T) {
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".PNG"} {
		if !IsImageExt(ext) {
			t.Errorf("IsImageExt(%q) = false, want true", ext)
		}
	}
	if IsImageExt(".gif") {
		t.Error("IsImageExt(.gif) = true, want false")
	}
}

func TestSupportedExtsListNamesEveryFormat(t *testing.T) {
	list := SupportedExtsList()
	for _, ext := range []string{".mp3", ".wav", ".flac", ".ogg"} {
		if !strings.Contains(list, ext) {
			t.Errorf("SupportedExtsList() = %q, missing %s", list, ext)
		}
	}
}
