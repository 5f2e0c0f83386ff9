// Package backup writes consistent snapshots of the SQLite database,
// optionally encrypted and copied to S3-compatible storage.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "modernc.org/sqlite"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Enabled reports whether enough is configured to upload.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

type Config struct {
	Dir        string
	Passphrase string
	S3         S3Config
}

// Result describes one completed snapshot.
type Result struct {
	Path      string
	SizeBytes int64
	Encrypted bool
	ObjectKey string
}

type Manager struct {
	db     *sql.DB
	cfg    Config
	client s3Client
	logger *slog.Logger
	now    func() time.Time
}

func NewManager(db *sql.DB, cfg Config, logger *slog.Logger) *Manager {
	m := &Manager{
		db:     db,
		cfg:    cfg,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	if cfg.S3.Enabled() {
		m.client = newS3Client(cfg.S3)
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Run snapshots the database into the backup directory. The snapshot is
// encrypted when a passphrase is configured and uploaded when S3 is.
func (m *Manager) Run(ctx context.Context) (*Result, error) {
	if err := os.MkdirAll(m.cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	name := "ulpack-" + m.now().Format("20060102T150405Z") + ".db"
	snapshot := filepath.Join(m.cfg.Dir, name)

	// VACUUM INTO reads through a single transaction, so the copy is
	// consistent even while the server keeps writing.
	if _, err := m.db.ExecContext(ctx, "VACUUM INTO ?", snapshot); err != nil {
		return nil, fmt.Errorf("snapshot database: %w", err)
	}

	res := &Result{Path: snapshot}
	if m.cfg.Passphrase != "" {
		enc := snapshot + ".enc"
		if err := EncryptFile(snapshot, enc, m.cfg.Passphrase); err != nil {
			os.Remove(snapshot)
			return nil, fmt.Errorf("encrypt snapshot: %w", err)
		}
		if err := os.Remove(snapshot); err != nil {
			return nil, fmt.Errorf("remove plaintext snapshot: %w", err)
		}
		res.Path = enc
		res.Encrypted = true
	}

	info, err := os.Stat(res.Path)
	if err != nil {
		return nil, fmt.Errorf("stat snapshot: %w", err)
	}
	res.SizeBytes = info.Size()

	if m.client != nil {
		key, err := m.upload(ctx, res.Path)
		if err != nil {
			return res, err
		}
		res.ObjectKey = key
	}

	m.logger.Info("backup complete",
		"path", res.Path,
		"size_bytes", res.SizeBytes,
		"encrypted", res.Encrypted,
		"object_key", res.ObjectKey,
	)
	return res, nil
}

func (m *Manager) upload(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read snapshot: %w", err)
	}
	key := "ulpack/" + filepath.Base(path)
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.S3.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}
	return key, nil
}

// Restore writes the snapshot at src to dst, decrypting it if needed, and
// checks that the result is an intact SQLite database. dst must not exist;
// the server should be stopped before the restored file is moved into place.
func Restore(ctx context.Context, src, dst, passphrase string) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("restore target %s already exists", dst)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat restore target: %w", err)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	if IsEncrypted(data) {
		if passphrase == "" {
			return fmt.Errorf("snapshot is encrypted: passphrase required")
		}
		if data, err = Decrypt(data, passphrase); err != nil {
			return err
		}
	}

	if err := os.WriteFile(dst, data, 0o600); err != nil {
		return fmt.Errorf("write restored db: %w", err)
	}
	if err := checkIntegrity(ctx, dst); err != nil {
		os.Remove(dst)
		return err
	}
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
