package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"channelguard/internal/security"

	_ "github.com/mattn/go-sqlite3"
)

// Database is the audit log. It records decisions and bulk-add runs after
// the fact; the core flows never read it back, and losing it never affects
// a decision or a pipeline run. The in-memory approval queue and bulk-add
// sessions are deliberately not persisted here.
type Database struct {
	db        *sql.DB
	encryptor *encryptor
}

const schema = `
CREATE TABLE IF NOT EXISTS decision_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT NOT NULL,
	chat_id INTEGER NOT NULL,
	submitter_name TEXT NOT NULL,
	content_kind TEXT NOT NULL,
	decision TEXT NOT NULL,
	decided_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS bulk_run_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL UNIQUE,
	channel_id INTEGER NOT NULL,
	attempted INTEGER NOT NULL,
	added INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	finished_at TIMESTAMP NOT NULL
);
`

func New(dbPath string) (*Database, error) {
	if err := security.ValidateFilePath(dbPath); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	enc, err := newEncryptor()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	return &Database{db: db, encryptor: enc}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// RecordDecision appends one resolved approval request to the log. The
// submitter's name is encrypted at rest when an audit secret is configured.
func (d *Database) RecordDecision(ctx context.Context, requestID string, chatID int64, submitterName, contentKind, decision string, decidedAt time.Time) error {
	name, err := d.encryptor.Encrypt(submitterName)
	if err != nil {
		return fmt.Errorf("failed to encrypt submitter name: %w", err)
	}

	_, err = d.db.ExecContext(ctx,
		`INSERT INTO decision_log (request_id, chat_id, submitter_name, content_kind, decision, decided_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		requestID, chatID, name, contentKind, decision, decidedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record decision: %w", err)
	}
	return nil
}

// RecordBulkRun appends the outcome of one bulk-add run.
func (d *Database) RecordBulkRun(ctx context.Context, runID string, channelID int64, attempted, added, failed int, finishedAt time.Time) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO bulk_run_log (run_id, channel_id, attempted, added, failed, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, channelID, attempted, added, failed, finishedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record bulk run: %w", err)
	}
	return nil
}
