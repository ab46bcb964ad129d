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

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		is_verified BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createVerificationCodeTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE verification_codes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		code TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		created_at DATETIME
	);`)
}

func createVideoTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE videos (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		filename TEXT UNIQUE NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createAnalysisTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE analyses (
		id TEXT PRIMARY KEY,
		video_id TEXT UNIQUE NOT NULL,
		prd_content TEXT,
		business_plan TEXT,
		created_at DATETIME
	);`)
}
