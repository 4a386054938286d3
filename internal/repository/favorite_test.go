package repository

import (
	"context"
	"testing"

	"github.com/templui/filenest/internal/db/dbtest"
)

func TestFavoriteRepository_LinkIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(dbtest.Open(t))

	fav := newNode("alice", nil, "Favorites", true)
	fav.IsFavoriteFolder = true
	file := newNode("alice", nil, "a.txt", false)
	mustCreate(t, store.Nodes, fav, file)

	for i := 0; i < 2; i++ {
		if err := store.Favorites.Link(ctx, file.ID, fav.ID); err != nil {
			t.Fatalf("Link #%d: %v", i+1, err)
		}
	}

	members, err := store.Favorites.Members(ctx, fav.ID)
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if len(members) != 1 || members[0] != file.ID {
		t.Errorf("Members = %v, want [%s]", members, file.ID)
	}

	ok, err := store.Favorites.IsFavorite(ctx, file.ID)
	if err != nil || !ok {
		t.Errorf("IsFavorite = %v, %v", ok, err)
	}
}

func TestFavoriteRepository_RelinkAndUnlinkAll(t *testing.T) {
	ctx := context.Background()
	store := NewStore(dbtest.Open(t))

	first := newNode("alice", nil, "First", true)
	first.IsFavoriteFolder = true
	second := newNode("alice", nil, "Second", true)
	second.IsFavoriteFolder = true
	file := newNode("alice", nil, "a.txt", false)
	mustCreate(t, store.Nodes, first, second, file)

	if err := store.Favorites.Link(ctx, file.ID, first.ID); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := store.Favorites.Relink(ctx, file.ID, second.ID); err != nil {
		t.Fatalf("Relink: %v", err)
	}

	folders, err := store.Favorites.Folders(ctx, file.ID)
	if err != nil {
		t.Fatalf("Folders: %v", err)
	}
	if len(folders) != 1 || folders[0] != second.ID {
		t.Errorf("Folders after Relink = %v, want [%s]", folders, second.ID)
	}

	if err := store.Favorites.UnlinkAll(ctx, second.ID); err != nil {
		t.Fatalf("UnlinkAll: %v", err)
	}

	set, err := store.Favorites.Favorited(ctx, []string{file.ID})
	if err != nil {
		t.Fatalf("Favorited: %v", err)
	}
	if set[file.ID] {
		t.Error("file still favorited after its folder was unlinked")
	}
}

func TestFavoriteRepository_UnlinkIgnoresUnknownIDs(t *testing.T) {
	ctx := context.Background()
	store := NewStore(dbtest.Open(t))

	n, err := store.Favorites.Unlink(ctx, "nope", "also-nope")
	if err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	if n != 0 {
		t.Errorf("Unlink removed %d rows, want 0", n)
	}
}
