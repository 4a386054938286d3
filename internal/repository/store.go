package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store groups the tree repositories behind one connection or transaction.
type Store struct {
	db        *sqlx.DB
	Nodes     NodeRepository
	Favorites FavoriteRepository
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:        db,
		Nodes:     NewNodeRepository(db),
		Favorites: NewFavoriteRepository(db),
	}
}

// InTx runs fn with a Store bound to a single transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStore := &Store{
		db:        s.db,
		Nodes:     NewNodeRepository(tx),
		Favorites: NewFavoriteRepository(tx),
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	err = fn(txStore)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
