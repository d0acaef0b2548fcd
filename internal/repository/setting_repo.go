package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/simnotice/simnotice/internal/domain"
)

type SettingRepo struct {
	db *sql.DB
}

func NewSettingRepo(db *sql.DB) *SettingRepo {
	return &SettingRepo{db: db}
}

func (r *SettingRepo) GetAll(ctx context.Context) ([]domain.Setting, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT setting_key, setting_value, description FROM settings ORDER BY setting_key")
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []domain.Setting
	for rows.Next() {
		var s domain.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetMany returns the values for the requested keys. Missing keys are absent
// from the map.
func (r *SettingRepo) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	q := "SELECT setting_key, setting_value FROM settings WHERE setting_key IN (?" +
		strings.Repeat(",?", len(keys)-1) + ")"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// BatchUpdate writes all values in one transaction, inserting keys that do
// not exist yet.
func (r *SettingRepo) BatchUpdate(ctx context.Context, values map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for k, v := range values {
		if err := upsertSetting(ctx, tx, k, v); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertSetting(ctx context.Context, e execer, key, value string) error {
	res, err := e.ExecContext(ctx, "UPDATE settings SET setting_value = ? WHERE setting_key = ?", value, key)
	if err != nil {
		return fmt.Errorf("update %s: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := e.ExecContext(ctx,
		"INSERT INTO settings (setting_key, setting_value, description) VALUES (?,?,'')", key, value,
	); err != nil {
		return fmt.Errorf("insert %s: %w", key, err)
	}
	return nil
}
