package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // cgo SQLite driver, registered as "sqlite3"
	_ "modernc.org/sqlite"          // pure Go SQLite driver, registered as "sqlite"

	"construct-hq/loom/pkg/chat"
)

// Record kinds stored in the records table.
const (
	kindCharacter  = "character"
	kindConnection = "connection"
	kindSettings   = "settings"
)

// Keys in the defaults table.
const (
	defaultConnectionKey = "connection"
	defaultSettingsKey   = "settings"
)

// SQLiteConfig configures a SQLiteStore.
type SQLiteConfig struct {
	// Path is the database file.
	Path string

	// Driver is "sqlite" (modernc.org/sqlite) or "sqlite3" (mattn/go-sqlite3).
	// Default: "sqlite"
	Driver string

	// BusyTimeout is how long to wait for locks.
	// Default: 5s
	BusyTimeout time.Duration
}

// SQLiteStore keeps records as JSON documents in a SQLite database.
type SQLiteStore struct {
	db        *sql.DB
	driver    string
	logger    *slog.Logger
	closeOnce sync.Once

	getStmt        *sql.Stmt
	putStmt        *sql.Stmt
	getDefaultStmt *sql.Stmt
	putDefaultStmt *sql.Stmt
}

// NewSQLiteStore opens or creates the database and its schema.
func NewSQLiteStore(cfg SQLiteConfig, logger *slog.Logger) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.Driver == "" {
		cfg.Driver = "sqlite"
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := openSQLite(cfg)
	if err != nil {
		return nil, err
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:     db,
		driver: cfg.Driver,
		logger: logger.With("component", "store.sqlite"),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	s.logger.Info("SQLite store opened", "path", cfg.Path, "driver", cfg.Driver)
	return s, nil
}

// openSQLite opens the database and enables WAL mode with a busy timeout.
// The pure Go driver takes pragmas in the DSN; the cgo driver gets them as
// statements after opening.
func openSQLite(cfg SQLiteConfig) (*sql.DB, error) {
	busyMs := cfg.BusyTimeout.Milliseconds()

	switch cfg.Driver {
	case "sqlite":
		dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
			cfg.Path, busyMs)
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return db, nil

	case "sqlite3":
		db, err := sql.Open("sqlite3", cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyMs)); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set busy timeout: %w", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported sqlite driver %q", cfg.Driver)
	}
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		kind TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (kind, id)
	);

	CREATE TABLE IF NOT EXISTS defaults (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.getStmt, err = s.db.Prepare(`SELECT payload FROM records WHERE kind = ? AND id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	s.putStmt, err = s.db.Prepare(`
		INSERT INTO records (kind, id, name, payload, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (kind, id) DO UPDATE SET
			name = excluded.name,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare put statement: %w", err)
	}

	s.getDefaultStmt, err = s.db.Prepare(`SELECT value FROM defaults WHERE key = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare default lookup statement: %w", err)
	}

	s.putDefaultStmt, err = s.db.Prepare(`
		INSERT INTO defaults (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare default update statement: %w", err)
	}

	return nil
}

// Driver returns the database/sql driver name in use.
func (s *SQLiteStore) Driver() string {
	return s.driver
}

func (s *SQLiteStore) get(ctx context.Context, kind, id string, dst any) error {
	var payload string
	err := s.getStmt.QueryRowContext(ctx, kind, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s %q: %w", kind, id, err)
	}
	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		return fmt.Errorf("failed to decode %s %q: %w", kind, id, err)
	}
	return nil
}

// Character returns the character with id.
func (s *SQLiteStore) Character(ctx context.Context, id string) (*chat.Character, error) {
	var c chat.Character
	if err := s.get(ctx, kindCharacter, id, &c); err != nil {
		return nil, err
	}
	c.ID = id
	return &c, nil
}

// Connection returns the connection with id.
func (s *SQLiteStore) Connection(ctx context.Context, id string) (*chat.Connection, error) {
	var c chat.Connection
	if err := s.get(ctx, kindConnection, id, &c); err != nil {
		return nil, err
	}
	c.ID = id
	return &c, nil
}

// Settings returns the settings preset with id.
func (s *SQLiteStore) Settings(ctx context.Context, id string) (*chat.Settings, error) {
	var st chat.Settings
	if err := s.get(ctx, kindSettings, id, &st); err != nil {
		return nil, err
	}
	st.ID = id
	return &st, nil
}

// Defaults returns the default ids. Unset defaults are empty strings.
func (s *SQLiteStore) Defaults(ctx context.Context) (Defaults, error) {
	var d Defaults
	var err error
	if d.Connection, err = s.defaultValue(ctx, defaultConnectionKey); err != nil {
		return Defaults{}, err
	}
	if d.Settings, err = s.defaultValue(ctx, defaultSettingsKey); err != nil {
		return Defaults{}, err
	}
	return d, nil
}

func (s *SQLiteStore) defaultValue(ctx context.Context, key string) (string, error) {
	var value string
	err := s.getDefaultStmt.QueryRowContext(ctx, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load default %s: %w", key, err)
	}
	return value, nil
}

// PutCharacter inserts or replaces a character.
func (s *SQLiteStore) PutCharacter(ctx context.Context, c chat.Character) error {
	return s.put(ctx, s.putStmt, kindCharacter, c.ID, c.Name, c)
}

// PutConnection inserts or replaces a connection.
func (s *SQLiteStore) PutConnection(ctx context.Context, c chat.Connection) error {
	return s.put(ctx, s.putStmt, kindConnection, c.ID, c.Name, c)
}

// PutSettings inserts or replaces a settings preset.
func (s *SQLiteStore) PutSettings(ctx context.Context, st chat.Settings) error {
	return s.put(ctx, s.putStmt, kindSettings, st.ID, st.Name, st)
}

// SetDefaults replaces the default ids.
func (s *SQLiteStore) SetDefaults(ctx context.Context, d Defaults) error {
	if _, err := s.putDefaultStmt.ExecContext(ctx, defaultConnectionKey, d.Connection); err != nil {
		return fmt.Errorf("failed to store default connection: %w", err)
	}
	if _, err := s.putDefaultStmt.ExecContext(ctx, defaultSettingsKey, d.Settings); err != nil {
		return fmt.Errorf("failed to store default settings: %w", err)
	}
	return nil
}

func (s *SQLiteStore) put(ctx context.Context, stmt *sql.Stmt, kind, id, name string, record any) error {
	if id == "" {
		return fmt.Errorf("%s id cannot be empty", kind)
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode %s %q: %w", kind, id, err)
	}
	if _, err := stmt.ExecContext(ctx, kind, id, name, string(payload), time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to store %s %q: %w", kind, id, err)
	}
	return nil
}

// Import writes every record in one transaction. Records without an id get
// a fresh UUID. Defaults are replaced only when set.
func (s *SQLiteStore) Import(ctx context.Context, records Records) (int, error) {
	records = records.clone()
	records.AssignIDs()

	// Defaults may name records already in the database, so only the
	// imported ids are checked.
	ids := Records{
		Characters:  records.Characters,
		Connections: records.Connections,
		Settings:    records.Settings,
	}
	if err := ids.Validate(); err != nil {
		return 0, fmt.Errorf("invalid records: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	put := tx.StmtContext(ctx, s.putStmt)
	n := 0
	for _, c := range records.Characters {
		if err := s.put(ctx, put, kindCharacter, c.ID, c.Name, c); err != nil {
			return 0, err
		}
		n++
	}
	for _, c := range records.Connections {
		if err := s.put(ctx, put, kindConnection, c.ID, c.Name, c); err != nil {
			return 0, err
		}
		n++
	}
	for _, st := range records.Settings {
		if err := s.put(ctx, put, kindSettings, st.ID, st.Name, st); err != nil {
			return 0, err
		}
		n++
	}

	putDefault := tx.StmtContext(ctx, s.putDefaultStmt)
	if id := records.Defaults.Connection; id != "" {
		if _, err := putDefault.ExecContext(ctx, defaultConnectionKey, id); err != nil {
			return 0, fmt.Errorf("failed to store default connection: %w", err)
		}
	}
	if id := records.Defaults.Settings; id != "" {
		if _, err := putDefault.ExecContext(ctx, defaultSettingsKey, id); err != nil {
			return 0, fmt.Errorf("failed to store default settings: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	s.logger.Info("records imported", "count", n)
	return n, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.getStmt, s.putStmt, s.getDefaultStmt, s.putDefaultStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		err = s.db.Close()
	})
	return err
}
