package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"testing"
)

func unzip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		body, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		out[f.Name] = string(body)
	}
	return out
}

func TestBuildArchive_RoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	folder := env.folder(t, alice, nil, "Project")
	env.file(t, alice, folder, "a.txt", "alpha")
	b := env.folder(t, alice, folder, "b")
	env.file(t, alice, b, "c.txt", "charlie")

	archive, err := env.archives.BuildArchive(ctx, alice, []string{folder.ID})
	if err != nil {
		t.Fatalf("BuildArchive: %v", err)
	}
	if archive.Name != "Project.zip" {
		t.Errorf("Name = %q, want Project.zip", archive.Name)
	}

	got := unzip(t, archive.Data)
	want := map[string]string{
		"Project/":        "",
		"Project/a.txt":   "alpha",
		"Project/b/":      "",
		"Project/b/c.txt": "charlie",
	}
	if len(got) != len(want) {
		t.Fatalf("archive entries = %v, want %v", got, want)
	}
	for name, body := range want {
		if got[name] != body {
			t.Errorf("%s = %q, want %q", name, got[name], body)
		}
	}
}

func TestBuildArchive_Selection(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	folder := env.folder(t, alice, nil, "Docs")
	env.file(t, alice, folder, "inner.txt", "inner")
	loose := env.file(t, alice, nil, "loose.pdf", "pdf")
	foreign := env.file(t, bob, nil, "secret.txt", "secret")

	archive, err := env.archives.BuildArchive(ctx, alice, []string{loose.ID, folder.ID, foreign.ID})
	if err != nil {
		t.Fatalf("BuildArchive: %v", err)
	}
	if archive.Name != "files.zip" {
		t.Errorf("Name = %q, want files.zip", archive.Name)
	}

	got := unzip(t, archive.Data)
	if got["loose.pdf"] != "pdf" || got["Docs/inner.txt"] != "inner" {
		t.Errorf("archive entries = %v", got)
	}
	if _, ok := got["secret.txt"]; ok {
		t.Error("archive contains another owner's file")
	}

	single, err := env.archives.BuildArchive(ctx, alice, []string{loose.ID})
	if err != nil {
		t.Fatalf("BuildArchive(file): %v", err)
	}
	if single.Name != "files.zip" {
		t.Errorf("single file archive name = %q, want files.zip", single.Name)
	}

	_, err = env.archives.BuildArchive(ctx, alice, []string{foreign.ID})
	wantKind(t, err, KindNotFound)
}

func TestBuildManifest(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	docs := env.folder(t, alice, nil, "Docs")
	x := env.file(t, alice, docs, "x.txt", "x")

	lines, err := env.archives.BuildManifest(ctx, alice)
	if err != nil {
		t.Fatalf("BuildManifest: %v", err)
	}

	want := []string{
		fmt.Sprintf("uploaded individually (ID: %s)", docs.ID),
		fmt.Sprintf("Docs (ID: %s)", x.ID),
	}
	sort.Strings(lines)
	sort.Strings(want)
	if len(lines) != len(want) {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
