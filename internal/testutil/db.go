package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/corepm/internal/database"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens an in-memory sqlite database with every migration applied,
// including the seeded unassigned team.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every connection to :memory: is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db, zap.NewNop()))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}
