package service

import (
	"context"
	"testing"

	"github.com/templui/filenest/internal/model"
)

func names(entries []*model.NodeEntry) map[string]*model.NodeEntry {
	out := make(map[string]*model.NodeEntry, len(entries))
	for _, e := range entries {
		out[e.Name] = e
	}
	return out
}

func TestListChildren_Filters(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	fav, _ := env.tree.EnsureDefaultFavoriteFolder(ctx, alice)
	docs := env.folder(t, alice, nil, "Docs")
	env.file(t, alice, nil, "top.pdf", "pdf")
	env.file(t, alice, nil, "song.mp3", "mp3")
	report := env.file(t, alice, docs, "report.docx", "doc")
	env.file(t, alice, docs, "photo.png", "png")

	if _, err := env.tree.AddToFavorites(ctx, alice, []string{report.ID}, fav.ID); err != nil {
		t.Fatalf("AddToFavorites: %v", err)
	}

	tests := []struct {
		name     string
		parentID *string
		filter   string
		want     []string
	}{
		{"root", nil, "", []string{"Docs", "top.pdf", "song.mp3"}},
		{"root all", nil, "all", []string{"Docs", "top.pdf", "song.mp3"}},
		{"folder", &docs.ID, "", []string{"report.docx", "photo.png"}},
		{"category everywhere", nil, "documents", []string{"top.pdf", "report.docx"}},
		{"category in folder", &docs.ID, "images", []string{"photo.png"}},
		{"favorites", &fav.ID, "favorites", []string{"report.docx"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := env.tree.ListChildren(ctx, alice, tt.parentID, tt.filter)
			if err != nil {
				t.Fatalf("ListChildren: %v", err)
			}
			got := names(entries)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries %v, want %v", len(got), got, tt.want)
			}
			for _, n := range tt.want {
				if got[n] == nil {
					t.Errorf("missing %q", n)
				}
			}
		})
	}

	_, err := env.tree.ListChildren(ctx, alice, nil, "spreadsheets")
	wantKind(t, err, KindValidation)

	_, err = env.tree.ListChildren(ctx, bob, &docs.ID, "")
	wantKind(t, err, KindPermissionDenied)
}

func TestListChildren_EntryDecoration(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	fav, _ := env.tree.EnsureDefaultFavoriteFolder(ctx, alice)
	docs := env.folder(t, alice, nil, "Docs")
	x := env.file(t, alice, docs, "x.txt", "x")
	env.file(t, alice, nil, "y.txt", "y")

	if _, err := env.tree.AddToFavorites(ctx, alice, []string{x.ID}, fav.ID); err != nil {
		t.Fatalf("AddToFavorites: %v", err)
	}

	entries, err := env.tree.ListChildren(ctx, alice, nil, "documents")
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	got := names(entries)

	if e := got["x.txt"]; e == nil || !e.IsFavorite || e.Source != "Docs" || e.Kind != model.KindFile {
		t.Errorf("x.txt entry = %+v", e)
	}
	if e := got["y.txt"]; e == nil || e.IsFavorite || e.Source != model.SourceIndividual {
		t.Errorf("y.txt entry = %+v", e)
	}
}

func TestGetSubfolderIDs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	top := env.folder(t, alice, nil, "Top")
	mid := env.folder(t, alice, top, "Mid")
	leaf := env.file(t, alice, mid, "leaf.txt", "l")
	env.file(t, alice, nil, "outside.txt", "o")

	ids, err := env.tree.GetSubfolderIDs(ctx, alice, top.ID)
	if err != nil {
		t.Fatalf("GetSubfolderIDs: %v", err)
	}

	want := map[string]bool{mid.ID: true, leaf.ID: true}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want Mid and leaf.txt", ids)
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected id %s", id)
		}
	}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.tree.EnsureDefaultFavoriteFolder(ctx, alice)
	if _, err := env.tree.CreateFile(ctx, alice, nil, "Budget-2024.xlsx", []byte("x"), "Finance"); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	env.file(t, alice, nil, "notes.txt", "n")
	env.file(t, bob, nil, "budget.txt", "b")

	byName, err := env.tree.Search(ctx, alice, "BUDGET", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Budget-2024.xlsx" {
		t.Errorf("Search(name=BUDGET) = %v", byName)
	}

	byTags, err := env.tree.Search(ctx, alice, "", "finance")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(byTags) != 1 {
		t.Errorf("Search(tags=finance) returned %d entries, want 1", len(byTags))
	}

	all, err := env.tree.Search(ctx, alice, "", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Search() returned %d entries, want 2 (favorite folder excluded)", len(all))
	}
}
