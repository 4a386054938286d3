package service

import (
	"context"
	"errors"
	"testing"

	"github.com/templui/filenest/internal/convert"
	"github.com/templui/filenest/internal/db/dbtest"
	"github.com/templui/filenest/internal/model"
	"github.com/templui/filenest/internal/repository"
	"github.com/templui/filenest/internal/storage"
)

const (
	alice = "user-alice"
	bob   = "user-bob"
)

type fakeConverter struct {
	out []byte
	err error
}

func (c *fakeConverter) Convert(_ context.Context, _ []byte, _ string) ([]byte, error) {
	return c.out, c.err
}

type testEnv struct {
	store     *repository.Store
	blobs     *storage.LocalStorage
	tree      *TreeService
	archives  *ArchiveService
	previews  *PreviewService
	converter *fakeConverter
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvDepth(t, 256)
}

func newTestEnvDepth(t *testing.T, maxDepth int) *testEnv {
	t.Helper()

	blobs, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	store := repository.NewStore(dbtest.Open(t))
	archives := NewArchiveService(store, blobs, maxDepth)
	converter := &fakeConverter{out: []byte("%PDF-1.4 converted")}

	return &testEnv{
		store:     store,
		blobs:     blobs,
		tree:      NewTreeService(store, blobs, maxDepth, "Favorites"),
		archives:  archives,
		previews:  NewPreviewService(store, blobs, archives, converter),
		converter: converter,
	}
}

func (e *testEnv) folder(t *testing.T, owner string, parent *model.Node, name string) *model.Node {
	t.Helper()
	n, err := e.tree.CreateFolder(context.Background(), owner, parentID(parent), name, "")
	if err != nil {
		t.Fatalf("CreateFolder(%q): %v", name, err)
	}
	return n
}

func (e *testEnv) file(t *testing.T, owner string, parent *model.Node, name, content string) *model.Node {
	t.Helper()
	n, err := e.tree.CreateFile(context.Background(), owner, parentID(parent), name, []byte(content), "")
	if err != nil {
		t.Fatalf("CreateFile(%q): %v", name, err)
	}
	return n
}

func (e *testEnv) count(t *testing.T, owner string) int {
	t.Helper()
	n, err := e.store.Nodes.Count(context.Background(), owner)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	return n
}

func (e *testEnv) reload(t *testing.T, n *model.Node) *model.Node {
	t.Helper()
	got, err := e.store.Nodes.ByID(context.Background(), n.OwnerID, n.ID)
	if err != nil {
		t.Fatalf("reload %s: %v", n.Name, err)
	}
	return got
}

func (e *testEnv) exists(t *testing.T, n *model.Node) bool {
	t.Helper()
	_, err := e.store.Nodes.ByID(context.Background(), n.OwnerID, n.ID)
	if errors.Is(err, repository.ErrNodeNotFound) {
		return false
	}
	if err != nil {
		t.Fatalf("lookup %s: %v", n.Name, err)
	}
	return true
}

func parentID(n *model.Node) *string {
	if n == nil {
		return nil
	}
	return &n.ID
}

func wantKind(t *testing.T, err error, kind string) {
	t.Helper()
	if err == nil {
		t.Fatalf("err = nil, want kind %s", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("err = %v (kind %s), want kind %s", err, got, kind)
	}
}

var _ convert.Converter = (*fakeConverter)(nil)
