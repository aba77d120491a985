// Package backup snapshots the blog database and ships it to object storage.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"blog-api/internal/repository/sqlite"
	"blog-api/internal/storage"
)

const (
	keyPrefix = "blog-"
	keySuffix = ".db"
	// sortable, and free of characters S3 keys dislike
	stampLayout = "20060102T150405Z"
)

type Config struct {
	Bucket    string
	KeyPrefix string
	// Keep is how many snapshots to retain under KeyPrefix; <= 0 keeps all.
	Keep   int
	Logger *logrus.Logger
}

// Runner takes one snapshot per Run.
type Runner struct {
	cfg     Config
	db      *sql.DB
	storage storage.Service
	now     func() time.Time
}

func NewRunner(cfg Config, db *sql.DB, store storage.Service) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	return &Runner{
		cfg:     cfg,
		db:      db,
		storage: store,
		now:     time.Now,
	}
}

// Run snapshots the database, uploads it and prunes old snapshots. It
// returns the location of the uploaded object.
func (r *Runner) Run(ctx context.Context) (string, error) {
	if r.cfg.Bucket == "" {
		return "", fmt.Errorf("storage bucket is required")
	}

	dir, err := os.MkdirTemp("", "blog-backup-")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	name := snapshotName(r.now())
	local := filepath.Join(dir, name)
	if err := sqlite.Snapshot(ctx, r.db, local); err != nil {
		return "", err
	}

	location, err := r.storage.UploadFile(ctx, local, storage.UploadOptions{
		Bucket: r.cfg.Bucket,
		Key:    r.key(name),
	})
	if err != nil {
		return "", err
	}
	r.cfg.Logger.WithField("location", location).Info("snapshot uploaded")

	if err := r.prune(ctx); err != nil {
		return location, fmt.Errorf("prune snapshots: %w", err)
	}
	return location, nil
}

func (r *Runner) prune(ctx context.Context) error {
	if r.cfg.Keep <= 0 {
		return nil
	}

	objects, err := r.storage.ListObjects(ctx, r.cfg.Bucket, r.key(keyPrefix))
	if err != nil {
		return err
	}

	var keys []string
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, keySuffix) {
			keys = append(keys, obj.Key)
		}
	}
	if len(keys) <= r.cfg.Keep {
		return nil
	}

	// snapshot names embed a sortable UTC stamp: newest last
	sort.Strings(keys)
	stale := keys[:len(keys)-r.cfg.Keep]
	if err := r.storage.DeleteObjects(ctx, r.cfg.Bucket, stale); err != nil {
		return err
	}
	r.cfg.Logger.WithField("count", len(stale)).Info("pruned old snapshots")
	return nil
}

func (r *Runner) key(name string) string {
	if r.cfg.KeyPrefix == "" {
		return name
	}
	return path.Join(r.cfg.KeyPrefix, name)
}

func snapshotName(t time.Time) string {
	return keyPrefix + t.UTC().Format(stampLayout) + keySuffix
}
