package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simnotice/simnotice/internal/domain"
)

type SimCardRepo struct {
	db *sql.DB
}

func NewSimCardRepo(db *sql.DB) *SimCardRepo {
	return &SimCardRepo{db: db}
}

const simCardColumns = `id, phone_number, balance, carrier, monthly_fee, billing_day, data_plan, location, created_at`

func (r *SimCardRepo) Create(ctx context.Context, c *domain.SimCard) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO sim_cards
		(phone_number, balance, carrier, monthly_fee, billing_day, data_plan, location, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		c.PhoneNumber, c.Balance, c.Carrier, c.MonthlyFee, c.BillingDay,
		c.DataPlan, c.Location, formatTime(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert sim card: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert sim card: last id: %w", err)
	}
	c.ID = id
	return nil
}

// BulkCreate inserts cards in one transaction. Used for seeding.
func (r *SimCardRepo) BulkCreate(ctx context.Context, cards []domain.SimCard) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sim_cards
		(phone_number, balance, carrier, monthly_fee, billing_day, data_plan, location, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	now := formatTime(time.Now())
	for i := range cards {
		c := &cards[i]
		if _, err := stmt.ExecContext(ctx,
			c.PhoneNumber, c.Balance, c.Carrier, c.MonthlyFee, c.BillingDay,
			c.DataPlan, c.Location, now,
		); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(cards), nil
}

func (r *SimCardRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sim_cards").Scan(&count)
	return count, err
}

// GetByID returns ErrCardNotFound when no row matches.
func (r *SimCardRepo) GetByID(ctx context.Context, id int64) (*domain.SimCard, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+simCardColumns+" FROM sim_cards WHERE id = ?", id)
	c, err := scanSimCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sim card %d: %w", id, err)
	}
	return c, nil
}

func (r *SimCardRepo) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sim_cards WHERE phone_number = ?", phone).Scan(&count)
	return count > 0, err
}

func (r *SimCardRepo) List(ctx context.Context) ([]domain.SimCard, error) {
	return r.query(ctx, "SELECT "+simCardColumns+" FROM sim_cards ORDER BY carrier, phone_number")
}

// GetCardsDueOn returns cards whose billing day is day, ordered by carrier
// then phone number.
func (r *SimCardRepo) GetCardsDueOn(ctx context.Context, day int) ([]domain.SimCard, error) {
	return r.query(ctx,
		"SELECT "+simCardColumns+" FROM sim_cards WHERE billing_day = ? ORDER BY carrier, phone_number",
		day,
	)
}

// GetBelowThreshold returns cards that cannot cover their next fee or sit
// under threshold, lowest balance first.
func (r *SimCardRepo) GetBelowThreshold(ctx context.Context, threshold decimal.Decimal) ([]domain.SimCard, error) {
	return r.query(ctx,
		"SELECT "+simCardColumns+" FROM sim_cards WHERE balance < monthly_fee OR balance < ? ORDER BY balance ASC, id ASC",
		threshold.InexactFloat64(),
	)
}

// UpdateBalance reports whether a row was updated. A false result with a nil
// error means the card no longer exists.
func (r *SimCardRepo) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) (bool, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE sim_cards SET balance = ? WHERE id = ?", balance, id)
	if err != nil {
		return false, fmt.Errorf("update balance %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update balance %d: rows affected: %w", id, err)
	}
	return n > 0, nil
}

func (r *SimCardRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sim_cards WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete sim card %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCardNotFound
	}
	return nil
}

func (r *SimCardRepo) query(ctx context.Context, q string, args ...any) ([]domain.SimCard, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var cards []domain.SimCard
	for rows.Next() {
		c, err := scanSimCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSimCard(s rowScanner) (*domain.SimCard, error) {
	var c domain.SimCard
	var createdAt sql.NullString

	err := s.Scan(
		&c.ID, &c.PhoneNumber, &c.Balance, &c.Carrier, &c.MonthlyFee,
		&c.BillingDay, &c.DataPlan, &c.Location, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	if createdAt.Valid {
		c.CreatedAt = parseTime(createdAt.String)
	}
	return &c, nil
}
