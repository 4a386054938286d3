package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	key := "nodes/alice/123"
	if err := s.Save(ctx, key, strings.NewReader("hello")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := ReadAll(ctx, s, key)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("ReadAll = %q, want hello", data)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("second Delete: %v", err)
	}

	_, err = s.Open(ctx, key)
	if !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("Open after Delete: err = %v, want ErrBlobNotFound", err)
	}
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	for _, key := range []string{"", "../escape", "nodes/../../escape"} {
		if err := s.Save(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Errorf("Save(%q) succeeded, want error", key)
		}
	}
}
