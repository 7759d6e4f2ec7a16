package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestRunUpCreatesTables(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_up?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Run(context.Background(), sqlDB, "sqlite", "up"))

	assert.True(t, conn.Migrator().HasTable("products"))
	assert.True(t, conn.Migrator().HasTable("kv_entries"))
	assert.True(t, conn.Migrator().HasIndex("products", "products_category_idx"))

	require.NoError(t, Run(context.Background(), sqlDB, "sqlite", "down"))
	assert.False(t, conn.Migrator().HasTable("kv_entries"))
	assert.True(t, conn.Migrator().HasTable("products"))
}

func TestDialect(t *testing.T) {
	dialect, err := Dialect("postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", dialect)

	dialect, err = Dialect("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", dialect)

	_, err = Dialect("mysql")
	assert.Error(t, err)
}

func TestRunRequiresDB(t *testing.T) {
	assert.Error(t, Run(context.Background(), nil, "sqlite", "up"))
}

func TestEmbeddedMigrationsValidate(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestProductsMigrationContainsSchema(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_products_table.sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS products",
		"price NUMERIC(12,2) NOT NULL",
		"rating_average DOUBLE PRECISION",
		"CREATE INDEX IF NOT EXISTS products_brand_idx",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	path, err := CreateSQLMigration(dir, "  Add Delivery Slots! ", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20260301090000_add_delivery_slots.sql"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "-- +goose Up"))
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "add delivery slots", now)
	assert.Error(t, err, "duplicate file must be rejected")

	_, err = CreateSQLMigration(dir, "!!!", now)
	assert.Error(t, err)
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	assert.Error(t, ValidateDir(dir))

	assert.Error(t, ValidateDir(t.TempDir()), "empty dir has no migrations")
}
