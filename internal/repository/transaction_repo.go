package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/simnotice/simnotice/internal/domain"
)

type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

// Insert appends a ledger row and fills in its ID and CreatedAt. A row for a
// card that does not exist fails with ErrCardNotFound.
func (r *TransactionRepo) Insert(ctx context.Context, tx *domain.Transaction) error {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions
		(sim_id, phone_number, amount, type, description, previous_balance, new_balance, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		tx.SimID, tx.PhoneNumber, tx.Amount, string(tx.Kind), tx.Description,
		tx.PreviousBalance, tx.NewBalance, formatTime(tx.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert transaction: %w", ErrCardNotFound)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert transaction: last id: %w", err)
	}
	tx.ID = id
	return nil
}

// ListBySim returns a card's ledger, newest first. limit <= 0 means 50.
func (r *TransactionRepo) ListBySim(ctx context.Context, simID int64, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sim_id, phone_number, amount, type, description, previous_balance, new_balance, created_at
		FROM transactions WHERE sim_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		simID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var kind string
		var createdAt sql.NullString
		if err := rows.Scan(
			&tx.ID, &tx.SimID, &tx.PhoneNumber, &tx.Amount, &kind, &tx.Description,
			&tx.PreviousBalance, &tx.NewBalance, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tx.Kind = domain.TransactionKind(kind)
		if createdAt.Valid {
			tx.CreatedAt = parseTime(createdAt.String)
		}
		txns = append(txns, tx)
	}
	return txns, rows.Err()
}

func (r *TransactionRepo) CountBySim(ctx context.Context, simID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions WHERE sim_id = ?", simID).Scan(&count)
	return count, err
}
