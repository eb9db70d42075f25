package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"wallet-account-picker/internal/account"
)

const prefSelectedAddress = "selected_address"

// DB wraps SQLite database
type DB struct {
	db *sql.DB
}

// Permission is one grant of an account to an external session
type Permission struct {
	ID        string
	Address   string
	Origin    string
	GrantedAt int64
	RevokedAt int64 // 0 while active
}

// NewDB creates a new database connection
func NewDB(path string) (*DB, error) {
	// _pragma=journal_mode(WAL) & _pragma=synchronous(NORMAL)
	dsn := path
	if !strings.Contains(path, "?") {
		dsn += "?"
	} else {
		dsn += "&"
	}
	dsn += "_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	log.Info().Str("path", path).Msg("database initialized")
	return &DB{db: db}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		address TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		ens TEXT NOT NULL DEFAULT '',
		balance TEXT NOT NULL DEFAULT '0x0',
		balance_error TEXT NOT NULL DEFAULT '',
		is_imported INTEGER NOT NULL DEFAULT 0,
		is_connected INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS balances (
		address TEXT PRIMARY KEY,
		wei TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS permissions (
		id TEXT PRIMARY KEY,
		address TEXT NOT NULL,
		origin TEXT NOT NULL,
		granted_at INTEGER NOT NULL,
		revoked_at INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_position ON accounts(position);
	CREATE INDEX IF NOT EXISTS idx_permissions_origin ON permissions(origin, revoked_at);
	`

	_, err := db.Exec(schema)
	return err
}

// GetAllAccounts retrieves all accounts in list order
func (d *DB) GetAllAccounts() ([]account.Record, error) {
	rows, err := d.db.Query(`
		SELECT address, name, ens, balance, balance_error, is_imported, is_connected
		FROM accounts ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []account.Record
	for rows.Next() {
		var r account.Record
		if err := rows.Scan(&r.Address, &r.Name, &r.ENS, &r.Balance, &r.BalanceError, &r.IsImported, &r.IsConnected); err != nil {
			return nil, err
		}
		r.Index = len(records)
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetBalances returns all tracker balances keyed by address
func (d *DB) GetBalances() (map[string]string, error) {
	rows, err := d.db.Query(`SELECT address, wei FROM balances`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := make(map[string]string)
	for rows.Next() {
		var addr, wei string
		if err := rows.Scan(&addr, &wei); err != nil {
			return nil, err
		}
		balances[addr] = wei
	}
	return balances, rows.Err()
}

// GetSelectedAddress returns the persisted selection, or "" if none
func (d *DB) GetSelectedAddress() (string, error) {
	var addr string
	err := d.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, prefSelectedAddress).Scan(&addr)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return addr, err
}

// SaveState writes the full picker state in one transaction
func (d *DB) SaveState(records []account.Record, snap account.Snapshot) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, r := range records {
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO accounts
			(address, name, ens, balance, balance_error, is_imported, is_connected, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Address, r.Name, r.ENS, r.Balance, r.BalanceError, r.IsImported, r.IsConnected, i); err != nil {
			return fmt.Errorf("save account %s: %w", r.Address, err)
		}
	}

	now := Now()
	for addr, info := range snap.Accounts {
		if info.Balance == nil {
			continue
		}
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO balances (address, wei, updated_at)
			VALUES (?, ?, ?)`, addr, *info.Balance, now); err != nil {
			return fmt.Errorf("save balance %s: %w", addr, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO preferences (key, value) VALUES (?, ?)`,
		prefSelectedAddress, snap.SelectedAddress); err != nil {
		return err
	}

	return tx.Commit()
}

// GrantPermission records that origin may see address
func (d *DB) GrantPermission(address, origin string) (string, error) {
	id := uuid.NewString()
	_, err := d.db.Exec(`
		INSERT INTO permissions (id, address, origin, granted_at)
		VALUES (?, ?, ?, ?)`, id, address, origin, Now())
	if err != nil {
		return "", err
	}
	return id, nil
}

// RevokePermissions closes every active grant of address to origin
func (d *DB) RevokePermissions(address, origin string) (int64, error) {
	res, err := d.db.Exec(`
		UPDATE permissions SET revoked_at = ?
		WHERE address = ? AND origin = ? AND revoked_at = 0`, Now(), address, origin)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ActivePermissions lists grants for origin that have not been revoked
func (d *DB) ActivePermissions(origin string) ([]*Permission, error) {
	rows, err := d.db.Query(`
		SELECT id, address, origin, granted_at, revoked_at
		FROM permissions WHERE origin = ? AND revoked_at = 0
		ORDER BY granted_at ASC`, origin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []*Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Address, &p.Origin, &p.GrantedAt, &p.RevokedAt); err != nil {
			return nil, err
		}
		perms = append(perms, &p)
	}
	return perms, rows.Err()
}

// Ping checks the database is reachable
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close closes the database
func (d *DB) Close() error {
	return d.db.Close()
}

// Now returns current Unix timestamp (helper)
func Now() int64 {
	return time.Now().Unix()
}
