// Package backup takes encrypted snapshots of the census database and keeps
// them in S3-compatible object storage.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/samber/lo"
	_ "modernc.org/sqlite"
)

const (
	snapshotSuffix = ".db.enc"
	keyTimeFormat  = "2006-01-02T150405Z"
)

// objectStore is the subset of the S3 client the manager uses.
type objectStore interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
}

// Enabled reports whether enough is configured to reach a bucket.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Snapshot describes one stored backup.
type Snapshot struct {
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager writes, lists, prunes and restores snapshots.
type Manager struct {
	client objectStore
	bucket string
	prefix string
	now    func() time.Time
	logger *slog.Logger
}

// NewManager builds a manager backed by a real S3 client.
func NewManager(cfg S3Config, logger *slog.Logger) (*Manager, error) {
	if !cfg.Enabled() {
		return nil, errors.New("backup not configured: bucket and credentials are required")
	}
	return newManager(newS3Client(cfg), cfg, logger), nil
}

func newManager(client objectStore, cfg S3Config, logger *slog.Logger) *Manager {
	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &Manager{
		client: client,
		bucket: cfg.Bucket,
		prefix: prefix,
		now:    time.Now,
		logger: logger.With("component", "backup"),
	}
}

func newS3Client(cfg S3Config) *s3.Client {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := s3.Options{
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Run snapshots db, encrypts it with passphrase and uploads it.
func (m *Manager) Run(ctx context.Context, db *sql.DB, passphrase string) (Snapshot, error) {
	tmp, err := os.MkdirTemp("", "census-backup-")
	if err != nil {
		return Snapshot{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	// VACUUM INTO writes a consistent copy without stopping writers.
	copyPath := filepath.Join(tmp, "snapshot.db")
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", copyPath); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot database: %w", err)
	}
	plain, err := os.ReadFile(copyPath)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	sealed, err := Seal(plain, passphrase)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encrypt snapshot: %w", err)
	}

	created := m.now().UTC()
	key := m.prefix + "backup-" + created.Format(keyTimeFormat) + snapshotSuffix
	if _, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(sealed),
		ContentLength: aws.Int64(int64(len(sealed))),
	}); err != nil {
		return Snapshot{}, fmt.Errorf("upload snapshot: %w", err)
	}

	snap := Snapshot{Key: key, Size: int64(len(sealed)), CreatedAt: created}
	m.logger.Info("backup uploaded", "key", key, "size", snap.Size)
	return snap, nil
}

// List returns stored snapshots, newest first.
func (m *Manager) List(ctx context.Context) ([]Snapshot, error) {
	var snaps []Snapshot
	var token *string
	for {
		out, err := m.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(m.bucket),
			Prefix:            aws.String(m.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, snapshotSuffix) {
				continue
			}
			snaps = append(snaps, Snapshot{
				Key:       key,
				Size:      aws.ToInt64(obj.Size),
				CreatedAt: m.createdAt(key, aws.ToTime(obj.LastModified)),
			})
		}
		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}
	slices.SortFunc(snaps, func(a, b Snapshot) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return snaps, nil
}

// createdAt reads the timestamp out of the key, falling back to the
// object's modification time for keys written by hand.
func (m *Manager) createdAt(key string, modified time.Time) time.Time {
	stamp := strings.TrimSuffix(strings.TrimPrefix(key, m.prefix+"backup-"), snapshotSuffix)
	if t, err := time.Parse(keyTimeFormat, stamp); err == nil {
		return t
	}
	return modified
}

// Prune deletes snapshots older than retention and reports how many went.
// The newest snapshot is always kept.
func (m *Manager) Prune(ctx context.Context, retention time.Duration) (int, error) {
	snaps, err := m.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(snaps) <= 1 {
		return 0, nil
	}
	cutoff := m.now().UTC().Add(-retention)
	stale := lo.Filter(snaps[1:], func(s Snapshot, _ int) bool {
		return s.CreatedAt.Before(cutoff)
	})

	deleted := 0
	for _, s := range stale {
		if _, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(m.bucket),
			Key:    aws.String(s.Key),
		}); err != nil {
			m.logger.Error("failed to delete snapshot", "key", s.Key, "error", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

// Restore downloads key, decrypts it, checks its integrity and replaces the
// database file at dst. The server must not be running against dst.
func (m *Manager) Restore(ctx context.Context, key, passphrase, dst string) error {
	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("download snapshot: %w", err)
	}
	sealed, err := io.ReadAll(out.Body)
	out.Body.Close()
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	plain, err := Open(sealed, passphrase)
	if err != nil {
		return err
	}

	staged := dst + ".restore"
	if err := os.WriteFile(staged, plain, 0600); err != nil {
		return fmt.Errorf("write restored db: %w", err)
	}
	if err := checkIntegrity(ctx, staged); err != nil {
		os.Remove(staged)
		return err
	}
	if err := os.Rename(staged, dst); err != nil {
		os.Remove(staged)
		return fmt.Errorf("replace database: %w", err)
	}
	os.Remove(dst + "-wal")
	os.Remove(dst + "-shm")

	m.logger.Info("backup restored", "key", key, "db", dst)
	return nil
}

func checkIntegrity(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open restored db: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}
