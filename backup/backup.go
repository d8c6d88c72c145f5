// Package backup snapshots the upload directory once a day and prunes old snapshots.
package backup

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

const snapshotLayout = "2006-01-02_15-04-05"

// Scheduler copies SrcDir into a timestamped folder under BackupDir every day
// at Hour:Minute local time, keeping snapshots younger than Retention.
type Scheduler struct {
	SrcDir    string
	BackupDir string
	Retention time.Duration
	Hour      int
	Minute    int

	now func() time.Time
}

func (s *Scheduler) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// NextRun returns the first Hour:Minute strictly after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.Hour, s.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := s.NextRun(s.clock())
		log.Info().Time("at", next).Msg("next upload backup scheduled")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if dest, err := s.Snapshot(ctx); err != nil {
			log.Error().Err(err).Msg("failed to back up uploads")
		} else {
			log.Info().Str("dest", dest).Msg("uploads backed up")
		}
		s.Prune()
	}
}

// Snapshot copies SrcDir into a new timestamped folder and returns its path.
// A cancelled ctx stops the copy and removes the partial snapshot.
func (s *Scheduler) Snapshot(ctx context.Context) (string, error) {
	dest := filepath.Join(s.BackupDir, s.clock().Format(snapshotLayout))
	if err := copyTree(ctx, s.SrcDir, dest); err != nil {
		if ctx.Err() != nil {
			_ = os.RemoveAll(dest)
		}
		return "", err
	}
	return dest, nil
}

// Prune removes snapshot folders older than Retention.
func (s *Scheduler) Prune() {
	entries, err := os.ReadDir(s.BackupDir)
	if err != nil {
		log.Error().Err(err).Str("dir", s.BackupDir).Msg("failed to read backup directory")
		return
	}

	cutoff := s.clock().Add(-s.Retention)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folderPath := filepath.Join(s.BackupDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(folderPath); err != nil {
				log.Error().Err(err).Str("dir", folderPath).Msg("failed to remove old backup")
			} else {
				log.Info().Str("dir", folderPath).Msg("removed old backup")
			}
		}
	}
}

// copyTree mirrors src into dest. Only directories and regular files are
// copied; uploads never contain links or devices.
func copyTree(ctx context.Context, src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		case d.Type().IsRegular():
			return copyFile(path, target)
		default:
			log.Warn().Str("path", path).Msg("skipping non-regular file in backup")
			return nil
		}
	})
}

func copyFile(src, dest string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
