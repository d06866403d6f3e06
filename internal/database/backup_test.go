package database

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"placehours/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupService(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, db.CreatePlace(ctx, &model.Place{Name: "카페", OpeningHours: "매일 08:00-20:00", IsActive: true}))

	logger := zerolog.New(io.Discard)
	dir := filepath.Join(t.TempDir(), "backups")
	svc := NewBackupService(db, dir, time.Hour, 24*time.Hour, &logger)

	path, err := svc.PerformBackup(ctx)
	require.NoError(t, err)
	assert.FileExists(t, path)

	restored, err := NewDB(path, &logger)
	require.NoError(t, err)
	defer restored.Close()
	p, err := restored.GetPlaceByName(ctx, "카페")
	require.NoError(t, err)
	assert.Equal(t, "매일 08:00-20:00", p.OpeningHours)

	stale := filepath.Join(dir, "placehours_old.db")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o600))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	deleted, err := svc.CleanupOldBackups(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, path)
}
