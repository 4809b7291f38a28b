package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewRejectsTraversalPath(t *testing.T) {
	_, err := New("../outside/audit.db")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid database path")
}

func TestRecordDecision(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()

	err := db.RecordDecision(ctx, "-100_1700000000", -100, "Alice Admin", "text", "approve", time.Now())
	require.NoError(t, err)

	var count int
	var name, decision string
	row := db.db.QueryRow(`SELECT COUNT(*), submitter_name, decision FROM decision_log`)
	require.NoError(t, row.Scan(&count, &name, &decision))
	assert.Equal(t, 1, count)
	assert.Equal(t, "Alice Admin", name, "plaintext when no audit secret is set")
	assert.Equal(t, "approve", decision)
}

func TestRecordBulkRun(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()

	err := db.RecordBulkRun(ctx, "run-1", -100555, 7, 5, 2, time.Now())
	require.NoError(t, err)

	var attempted, added, failed int
	row := db.db.QueryRow(`SELECT attempted, added, failed FROM bulk_run_log WHERE run_id = ?`, "run-1")
	require.NoError(t, row.Scan(&attempted, &added, &failed))
	assert.Equal(t, 7, attempted)
	assert.Equal(t, 5, added)
	assert.Equal(t, 2, failed)
}

func TestRecordBulkRunDuplicateRunID(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()

	require.NoError(t, db.RecordBulkRun(ctx, "run-1", -1, 1, 1, 0, time.Now()))
	assert.Error(t, db.RecordBulkRun(ctx, "run-1", -1, 1, 1, 0, time.Now()))
}

func TestEncryptorDisabledWithoutSecret(t *testing.T) {
	t.Setenv("CHANNELGUARD_AUDIT_SECRET", "")

	enc, err := newEncryptor()
	require.NoError(t, err)

	out, err := enc.Encrypt("Alice Admin")
	require.NoError(t, err)
	assert.Equal(t, "Alice Admin", out)
}

func TestEncryptorRejectsShortSecret(t *testing.T) {
	t.Setenv("CHANNELGUARD_AUDIT_SECRET", "too-short")

	_, err := newEncryptor()

	assert.Error(t, err)
}

func TestEncryptorRoundTrip(t *testing.T) {
	t.Setenv("CHANNELGUARD_AUDIT_SECRET", "this-is-a-test-secret-of-32-chars!!")

	enc, err := newEncryptor()
	require.NoError(t, err)

	ciphertext, err := enc.Encrypt("Alice Admin")
	require.NoError(t, err)
	assert.NotEqual(t, "Alice Admin", ciphertext)

	plaintext, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "Alice Admin", plaintext)
}

func TestEncryptorNonDeterministic(t *testing.T) {
	t.Setenv("CHANNELGUARD_AUDIT_SECRET", "this-is-a-test-secret-of-32-chars!!")

	enc, err := newEncryptor()
	require.NoError(t, err)

	a, err := enc.Encrypt("same input")
	require.NoError(t, err)
	b, err := enc.Encrypt("same input")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "fresh nonce per encryption")
}

func TestEncryptedDecisionAtRest(t *testing.T) {
	t.Setenv("CHANNELGUARD_AUDIT_SECRET", "this-is-a-test-secret-of-32-chars!!")
	db := setupTestDatabase(t)

	require.NoError(t, db.RecordDecision(context.Background(),
		"-100_1", -100, "Alice Admin", "photo", "reject", time.Now()))

	var stored string
	row := db.db.QueryRow(`SELECT submitter_name FROM decision_log`)
	require.NoError(t, row.Scan(&stored))
	assert.NotEqual(t, "Alice Admin", stored)

	plaintext, err := db.encryptor.Decrypt(stored)
	require.NoError(t, err)
	assert.Equal(t, "Alice Admin", plaintext)
}
