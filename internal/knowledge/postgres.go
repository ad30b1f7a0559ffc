package knowledge

import (
	"database/sql"
	"os"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// pgBackend mirrors knowledge writes into Postgres. Reads stay in memory;
// the table only serves re-import after a restart.
type pgBackend struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func newPGBackendFromEnv() (*pgBackend, error) {
	dsn := strings.TrimSpace(os.Getenv("KNOWLEDGE_PG_DSN"))
	if dsn == "" {
		return nil, nil
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &pgBackend{db: db}, nil
}

func (b *pgBackend) ensureSchema() error {
	b.schemaOnce.Do(func() {
		_, b.schemaErr = b.db.Exec(`
CREATE TABLE IF NOT EXISTS knowledge_items (
    key          BIGINT PRIMARY KEY,
    kind         TEXT NOT NULL,
    payload      JSONB NOT NULL,
    strength     INTEGER NOT NULL,
    last_touched TIMESTAMPTZ NOT NULL
)`)
	})
	return b.schemaErr
}

func (b *pgBackend) upsert(item Item) error {
	if err := b.ensureSchema(); err != nil {
		return err
	}
	_, err := b.db.Exec(`
INSERT INTO knowledge_items (key, kind, payload, strength, last_touched)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (key) DO UPDATE
SET strength = EXCLUDED.strength, last_touched = EXCLUDED.last_touched`,
		int64(item.Key), string(item.Kind), []byte(item.Payload), item.Strength, item.LastTouched)
	return err
}

func (b *pgBackend) close() error {
	return b.db.Close()
}
