package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/templui/filenest/internal/model"
	"github.com/templui/filenest/internal/repository"
)

// treeWalker visits subtrees by repeated child lookups. It fails with
// ErrTreeTooDeep past maxDepth levels or when a node is reached twice.
type treeWalker struct {
	nodes    repository.NodeRepository
	ownerID  string
	maxDepth int
	visited  map[string]bool
}

func newTreeWalker(nodes repository.NodeRepository, ownerID string, maxDepth int) *treeWalker {
	return &treeWalker{
		nodes:    nodes,
		ownerID:  ownerID,
		maxDepth: maxDepth,
		visited:  make(map[string]bool),
	}
}

// walk calls visit for every descendant of root in pre-order.
func (w *treeWalker) walk(ctx context.Context, root *model.Node, visit func(node, parent *model.Node) error) error {
	w.visited[root.ID] = true
	return w.walkLevel(ctx, root, 1, visit)
}

func (w *treeWalker) walkLevel(ctx context.Context, parent *model.Node, depth int, visit func(node, parent *model.Node) error) error {
	if depth > w.maxDepth {
		return newError(KindTreeTooDeep, "folder %q exceeds the maximum depth of %d", parent.Name, w.maxDepth)
	}

	children, err := w.nodes.Children(ctx, w.ownerID, &parent.ID)
	if err != nil {
		return fmt.Errorf("failed to list children of %s: %w", parent.ID, err)
	}

	for _, child := range children {
		if w.visited[child.ID] {
			return newError(KindTreeTooDeep, "folder %q contains a cycle", parent.Name)
		}
		w.visited[child.ID] = true

		err = visit(child, parent)
		if err != nil {
			return err
		}

		if child.IsFolder {
			err = w.walkLevel(ctx, child, depth+1, visit)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// descendants returns every node below root in pre-order.
func (w *treeWalker) descendants(ctx context.Context, root *model.Node) ([]*model.Node, error) {
	var nodes []*model.Node
	err := w.walk(ctx, root, func(node, _ *model.Node) error {
		nodes = append(nodes, node)
		return nil
	})
	return nodes, err
}

// nodeError translates repository lookups into service errors. Nodes owned
// by someone else report the same message as missing ones.
func nodeError(err error, id string) error {
	switch {
	case errors.Is(err, repository.ErrNodeNotFound):
		return wrapError(KindNotFound, err, "node %s not found", id)
	case errors.Is(err, repository.ErrNodeForbidden):
		return wrapError(KindPermissionDenied, err, "node %s not found", id)
	default:
		return fmt.Errorf("failed to load node %s: %w", id, err)
	}
}

// uniqueIDs drops duplicates and empty ids, keeping first occurrences.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
