package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestRunMigrationsSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, RunMigrations(db, "unused", zap.NewNop()))

	for _, table := range []string{"recipe_memories", "diversity_metrics", "user_preferences"} {
		assert.True(t, db.Migrator().HasTable(table), "expected table %s", table)
	}
}
