// Package storage keeps uploaded certificate scans and attachments, on local
// disk in development and in a Cloud Storage bucket in production.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// MaxUploadSize bounds a single multipart upload.
const MaxUploadSize = 50 << 20

// Store saves an uploaded file and returns the URL it is served from.
type Store interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// ObjectName builds a collision-free name that keeps the original extension.
func ObjectName(filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	return fmt.Sprintf("%s-%s%s", now.Format("20060102-150405"), uuid.NewString(), ext)
}

// Local writes files under Dir; they are served at URLPrefix.
type Local struct {
	Dir       string
	URLPrefix string
	now       func() time.Time
}

func NewLocal(dir string) *Local {
	return &Local{Dir: dir, URLPrefix: "/uploads", now: time.Now}
}

func (l *Local) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}
	name := ObjectName(filename, l.now())
	full := filepath.Join(l.Dir, name)
	dst, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	_, err = io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(full)
		return "", fmt.Errorf("save file: %w", err)
	}
	return path.Join(l.URLPrefix, name), nil
}

// GCS writes objects to a Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCS connects with the given service account key file, or application
// default credentials when credentialsFile is empty.
func NewGCS(ctx context.Context, bucket, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, prefix: "attachments"}, nil
}

func (g *GCS) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	object := path.Join(g.prefix, ObjectName(filename, time.Now()))
	w := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"original-name": filepath.Base(filename)}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("upload %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", object, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, object), nil
}

func (g *GCS) Close() error { return g.client.Close() }
