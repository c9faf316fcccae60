package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createWalletAssociationTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE wallet_associations (
		id TEXT PRIMARY KEY,
		identity_key TEXT NOT NULL,
		address TEXT NOT NULL,
		permanent BOOLEAN,
		provenance TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createWalletSyncTaskTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE wallet_sync_tasks (
		id TEXT PRIMARY KEY,
		identity_key TEXT NOT NULL,
		address TEXT,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		next_attempt_at DATETIME NOT NULL,
		last_error TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createAccountTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE accounts (
		identity_key TEXT PRIMARY KEY,
		account_kind TEXT NOT NULL,
		name TEXT,
		role TEXT,
		owner_key TEXT,
		wallet_address TEXT,
		payment_id TEXT,
		payment_qr_url TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createTransactionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE investment_transactions (
		id TEXT PRIMARY KEY,
		startup_key TEXT NOT NULL,
		investor_key TEXT NOT NULL,
		amount TEXT NOT NULL,
		rail TEXT NOT NULL,
		external_ref TEXT,
		block_number INTEGER,
		status TEXT NOT NULL,
		failure_reason TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createOnchainIDTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE onchain_id_mappings (
		identity_key TEXT PRIMARY KEY,
		onchain_id INTEGER NOT NULL UNIQUE,
		created_at DATETIME
	);`)
}
