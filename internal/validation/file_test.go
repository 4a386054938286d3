package validation

import (
	"testing"

	"github.com/templui/filenest/internal/model"
)

func TestCategory(t *testing.T) {
	tests := map[string]string{
		"pdf":  model.CategoryDocuments,
		"xlsx": model.CategoryDocuments,
		"jpeg": model.CategoryImages,
		"mkv":  model.CategoryVideos,
		"mp3":  model.CategoryAudio,
		"zip":  model.CategoryOther,
		"":     model.CategoryOther,
	}

	for ext, want := range tests {
		if got := Category(ext); got != want {
			t.Errorf("Category(%q) = %q, want %q", ext, got, want)
		}
	}
}

func TestAllowedExtension(t *testing.T) {
	for _, ext := range []string{"txt", "rar", "pptx", "gif"} {
		if !AllowedExtension(ext) {
			t.Errorf("AllowedExtension(%q) = false, want true", ext)
		}
	}
	for _, ext := range []string{"exe", "md", "", "PDF"} {
		if AllowedExtension(ext) {
			t.Errorf("AllowedExtension(%q) = true, want false", ext)
		}
	}
}

func TestMimeType(t *testing.T) {
	if got := MimeType("png"); got != "image/png" {
		t.Errorf("MimeType(png) = %q", got)
	}
	if got := MimeType("bin"); got != "application/octet-stream" {
		t.Errorf("MimeType(bin) = %q", got)
	}
}
