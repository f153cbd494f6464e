package db_test

import (
	"context"
	"testing"

	"recipebox/internal/db"
	"recipebox/internal/db/dbtest"
	"recipebox/internal/logger"
	"recipebox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateAndSeed(t *testing.T) {
	gdb := dbtest.New(t)

	var seeded int64
	require.NoError(t, gdb.Model(&models.Category{}).Count(&seeded).Error)
	assert.Positive(t, seeded)

	// Seeding again is a no-op.
	require.NoError(t, db.SeedCategories(gdb, logger.Discard()))
	var count int64
	require.NoError(t, gdb.Model(&models.Category{}).Count(&count).Error)
	assert.Equal(t, seeded, count)

	assert.NoError(t, db.Ping(context.Background(), gdb))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := db.Open(db.Options{Driver: "oracle"}, logger.Discard())
	assert.Error(t, err)
}
