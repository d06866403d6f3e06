package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// BackupService periodically snapshots the database into a directory.
type BackupService struct {
	db        *DB
	dir       string
	interval  time.Duration
	retention time.Duration
	logger    *zerolog.Logger
}

func NewBackupService(db *DB, dir string, interval, retention time.Duration, logger *zerolog.Logger) *BackupService {
	if dir == "" {
		dir = "backups"
	}
	return &BackupService{
		db:        db,
		dir:       dir,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

// Start runs backups until ctx is done. The first backup runs after a short delay.
func (s *BackupService) Start(ctx context.Context) {
	s.logger.Info().Str("dir", s.dir).Dur("interval", s.interval).Msg("Backup service started")

	select {
	case <-time.After(time.Minute):
		s.runOnce(ctx)
	case <-ctx.Done():
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *BackupService) runOnce(ctx context.Context) {
	path, err := s.PerformBackup(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled backup failed")
		return
	}
	s.logger.Info().Str("path", path).Msg("Backup completed successfully")

	deleted, err := s.CleanupOldBackups(time.Now())
	if err != nil {
		s.logger.Error().Err(err).Msg("Backup cleanup failed")
	} else if deleted > 0 {
		s.logger.Info().Int("deleted", deleted).Msg("Cleaned up old backups")
	}
}

// PerformBackup writes a consistent snapshot with VACUUM INTO and returns its path.
func (s *BackupService) PerformBackup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405.000")
	dest := filepath.Join(s.dir, fmt.Sprintf("placehours_%s.db", timestamp))

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, dest); err != nil {
		return "", fmt.Errorf("vacuum into %s: %w", dest, err)
	}
	return dest, nil
}

// CleanupOldBackups removes snapshots older than the retention window.
func (s *BackupService) CleanupOldBackups(now time.Time) (int, error) {
	if s.retention <= 0 {
		return 0, nil
	}

	files, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read backup directory: %w", err)
	}

	cutoff := now.Add(-s.retention)
	deleted := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasPrefix(file.Name(), "placehours_") {
			continue
		}

		info, err := file.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, file.Name())); err != nil {
				return deleted, err
			}
			deleted++
		}
	}
	return deleted, nil
}
