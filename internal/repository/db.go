package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/simnotice/simnotice/internal/domain"
	"github.com/simnotice/simnotice/internal/template"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

var ErrCardNotFound = errors.New("repository: sim card not found")

const timeLayout = "2006-01-02 15:04:05"

type dialect struct {
	autoID       string
	money        string
	insertIgnore string
	tableSuffix  string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		autoID:       "INTEGER PRIMARY KEY AUTOINCREMENT",
		money:        "REAL",
		insertIgnore: "INSERT OR IGNORE",
	},
	DriverMySQL: {
		autoID:       "BIGINT AUTO_INCREMENT PRIMARY KEY",
		money:        "DECIMAL(10,2)",
		insertIgnore: "INSERT IGNORE",
		tableSuffix:  " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
	},
}

// InitDB opens the database for driver ("sqlite" or "mysql"), ensures all
// tables exist and seeds default settings that are absent.
func InitDB(driver, dsn string) (*sql.DB, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	if driver == DriverSQLite {
		dsn = withPragmas(dsn)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := createTables(db, driver, d); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	if err := seedSettings(db, d); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed settings: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB, driver string, d dialect) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sim_cards (
			id ` + d.autoID + `,
			phone_number VARCHAR(20) NOT NULL UNIQUE,
			balance ` + d.money + ` NOT NULL DEFAULT 0,
			carrier VARCHAR(50) NOT NULL DEFAULT '',
			monthly_fee ` + d.money + ` NOT NULL,
			billing_day INTEGER NOT NULL,
			data_plan VARCHAR(100) NOT NULL DEFAULT '',
			location VARCHAR(100) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)` + d.tableSuffix,

		`CREATE TABLE IF NOT EXISTS transactions (
			id ` + d.autoID + `,
			sim_id BIGINT NOT NULL,
			phone_number VARCHAR(20) NOT NULL,
			amount ` + d.money + ` NOT NULL,
			type VARCHAR(10) NOT NULL,
			description VARCHAR(255) NOT NULL DEFAULT '',
			previous_balance ` + d.money + ` NOT NULL,
			new_balance ` + d.money + ` NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (sim_id) REFERENCES sim_cards(id) ON DELETE CASCADE
		)` + d.tableSuffix,

		`CREATE TABLE IF NOT EXISTS settings (
			id ` + d.autoID + `,
			setting_key VARCHAR(100) NOT NULL UNIQUE,
			setting_value TEXT NOT NULL,
			description VARCHAR(255) NOT NULL DEFAULT ''
		)` + d.tableSuffix,
	}

	// MySQL has no CREATE INDEX IF NOT EXISTS; its FK already indexes sim_id.
	if driver == DriverSQLite {
		stmts = append(stmts,
			`CREATE INDEX IF NOT EXISTS idx_sim_cards_billing_day ON sim_cards(billing_day)`,
			`CREATE INDEX IF NOT EXISTS idx_transactions_sim ON transactions(sim_id)`,
		)
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}

	return nil
}

// DefaultSettings are inserted on startup when their key is missing.
func DefaultSettings() []domain.Setting {
	return []domain.Setting{
		{Key: domain.KeyNotificationType, Value: string(domain.NotifyEmail), Description: "notification channel: email, wechat or both"},
		{Key: domain.KeyEmailEnabled, Value: "true", Description: "send email notifications"},
		{Key: domain.KeyWechatEnabled, Value: "false", Description: "send webhook notifications"},
		{Key: domain.KeyBalanceThreshold, Value: "10", Description: "low balance threshold"},
		{Key: domain.KeyNotificationDaysBefore, Value: "3", Description: "days before billing to notify (reserved)"},
		{Key: domain.KeyEmailSubject, Value: template.DefaultEmailSubject, Description: "email subject"},
		{Key: domain.KeyEmailTemplate, Value: template.DefaultEmailTemplate, Description: "email HTML template"},
		{Key: domain.KeyWechatWebhookURL, Value: "", Description: "group bot webhook url"},
		{Key: domain.KeyWechatTemplate, Value: template.DefaultWechatTemplate, Description: "webhook markdown template"},
	}
}

func seedSettings(db *sql.DB, d dialect) error {
	q := d.insertIgnore + ` INTO settings (setting_key, setting_value, description) VALUES (?,?,?)`
	for _, s := range DefaultSettings() {
		if _, err := db.Exec(q, s.Key, s.Value, s.Description); err != nil {
			return fmt.Errorf("insert %s: %w", s.Key, err)
		}
	}
	return nil
}

// --- helpers ---

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime accepts the layout we write and the RFC 3339 form drivers
// produce when they hand back a time.Time for a DATETIME column.
func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t.UTC()
}

// withPragmas applies WAL mode, foreign keys and a busy timeout to every
// connection the pool opens.
func withPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func isForeignKeyViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "FOREIGN KEY"))
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1452
	}
	return false
}
