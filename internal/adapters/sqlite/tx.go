package sqlite

import (
	"context"
	"database/sql"

	"refsync/internal/domain"
)

// linkTx batches link inserts
type linkTx struct {
	tx *sql.Tx
}

func (s *LinkStore) beginTx(ctx context.Context) (*linkTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &linkTx{tx: tx}, nil
}

// insert adds a link inside the transaction
func (t *linkTx) insert(ctx context.Context, link domain.Link) error {
	_, err := t.tx.ExecContext(ctx, insertLink, linkArgs(link)...)
	return err
}

// Commit commits the transaction
func (t *linkTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *linkTx) Rollback() error {
	return t.tx.Rollback()
}
