// Package money implements the money tracker's private ledger: transactions
// are created by the session user and listed back only to that user, newest
// first.
package money

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/miniweb-go/apperror"
)

// Store is the transaction persistence interface the handlers depend on.
type Store interface {
	Create(ctx context.Context, tx *Transaction) (*Transaction, error)
	ListByUser(ctx context.Context, userID int64) ([]Transaction, error)
}

// PGStore implements Store against the money tracker database.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a PGStore.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// Create inserts a transaction; the database stamps the date.
func (s *PGStore) Create(ctx context.Context, tx *Transaction) (*Transaction, error) {
	query := `INSERT INTO transactions (type, amount, description, user_id)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, date`
	err := s.db.QueryRow(ctx, query, tx.Type, tx.Amount, tx.Description, tx.UserID).
		Scan(&tx.ID, &tx.Date)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create transaction", err)
	}
	return tx, nil
}

// ListByUser returns the given user's transactions sorted by date
// descending. The query is always scoped to one user id.
func (s *PGStore) ListByUser(ctx context.Context, userID int64) ([]Transaction, error) {
	query := `SELECT id, type, amount, description, user_id, date
	          FROM transactions
	          WHERE user_id = $1
	          ORDER BY date DESC, id DESC`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list transactions", err)
	}
	defer rows.Close()

	txs := []Transaction{}
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Type, &t.Amount, &t.Description, &t.UserID, &t.Date); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan transaction", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list transactions", err)
	}
	return txs, nil
}
