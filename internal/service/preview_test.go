package service

import (
	"context"
	"errors"
	"testing"

	"github.com/templui/filenest/internal/convert"
)

func TestPreview(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	txt := env.file(t, alice, nil, "readme.txt", "hello")
	doc := env.file(t, alice, nil, "plan.docx", "docx bytes")
	zipped := env.file(t, alice, nil, "bundle.zip", "PK")
	folder := env.folder(t, alice, nil, "Docs")

	got, err := env.previews.Preview(ctx, alice, txt.ID)
	if err != nil {
		t.Fatalf("Preview(txt): %v", err)
	}
	if string(got.Data) != "hello" || got.MimeType != "text/plain; charset=utf-8" {
		t.Errorf("Preview(txt) = %q as %s", got.Data, got.MimeType)
	}

	got, err = env.previews.Preview(ctx, alice, doc.ID)
	if err != nil {
		t.Fatalf("Preview(docx): %v", err)
	}
	if got.MimeType != "application/pdf" || got.Name != "plan.pdf" || string(got.Data) != "%PDF-1.4 converted" {
		t.Errorf("Preview(docx) = %s %s %q", got.Name, got.MimeType, got.Data)
	}

	for _, id := range []string{zipped.ID, folder.ID} {
		_, err = env.previews.Preview(ctx, alice, id)
		if !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Preview(%s) err = %v, want ErrUnsupportedType", id, err)
		}
	}

	_, err = env.previews.Preview(ctx, bob, txt.ID)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Preview by other owner err = %v, want ErrPermissionDenied", err)
	}
}

func TestPreview_ConversionFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.converter.err = convert.ErrConversion
	doc := env.file(t, alice, nil, "sheet.xlsx", "xlsx")

	_, err := env.previews.Preview(ctx, alice, doc.ID)
	if !errors.Is(err, ErrConversion) {
		t.Errorf("err = %v, want ErrConversion", err)
	}
}

func TestDownload(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	folder := env.folder(t, alice, nil, "Docs")
	song := env.file(t, alice, folder, "song.mp3", "id3")

	got, err := env.previews.Download(ctx, alice, song.ID)
	if err != nil {
		t.Fatalf("Download(file): %v", err)
	}
	if got.Name != "song.mp3" || got.MimeType != "audio/mpeg" || string(got.Data) != "id3" {
		t.Errorf("Download(file) = %s %s %q", got.Name, got.MimeType, got.Data)
	}

	got, err = env.previews.Download(ctx, alice, folder.ID)
	if err != nil {
		t.Fatalf("Download(folder): %v", err)
	}
	if got.Name != "Docs.zip" || got.MimeType != ArchiveMimeType {
		t.Errorf("Download(folder) = %s %s", got.Name, got.MimeType)
	}
	if entries := unzip(t, got.Data); entries["Docs/song.mp3"] != "id3" {
		t.Errorf("folder archive = %v", entries)
	}
}
