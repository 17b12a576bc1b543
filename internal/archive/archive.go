// Package archive stores generated budget workbooks in Google Cloud Storage.
package archive

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/dvloznov/finance-journal/internal/spreadsheet"
)

// Archiver stores workbooks and reads them back.
type Archiver interface {
	// Archive uploads a workbook generated from a journal record and
	// returns its gs:// URI.
	Archive(ctx context.Context, userID, journalID int64, data []byte) (string, error)

	// Fetch downloads the object at a gs:// URI.
	Fetch(ctx context.Context, gcsURI string) ([]byte, error)
}

// GCSArchiver is the Cloud Storage implementation of Archiver.
type GCSArchiver struct {
	client *storage.Client
	bucket string
	prefix string
	now    func() time.Time
}

// NewGCSArchiver creates an archiver writing under prefix in bucket.
// It assumes Application Default Credentials are configured.
func NewGCSArchiver(ctx context.Context, bucket, prefix string) (*GCSArchiver, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCSArchiver: create storage client: %w", err)
	}
	return &GCSArchiver{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
	}, nil
}

// Close releases the storage client.
func (a *GCSArchiver) Close() error {
	return a.client.Close()
}

// Archive implements Archiver.
func (a *GCSArchiver) Archive(ctx context.Context, userID, journalID int64, data []byte) (string, error) {
	objectName := ObjectName(a.prefix, userID, a.now(), uuid.NewString())

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := a.client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = spreadsheet.ContentType
	w.Metadata = map[string]string{
		"user_id":    strconv.FormatInt(userID, 10),
		"journal_id": strconv.FormatInt(journalID, 10),
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("Archive: write object: %w", err)
	}
	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Archive: finalize upload: %w", err)
	}

	return "gs://" + a.bucket + "/" + objectName, nil
}

// Fetch implements Archiver.
func (a *GCSArchiver) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	bucket, object, err := ParseGCSURI(gcsURI)
	if err != nil {
		return nil, err
	}

	rc, err := a.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading bytes: %w", err)
	}
	return data, nil
}

// ObjectName builds "<prefix>/<user>/<yyyy>/<mm>/<dd>/<id>.xlsx".
func ObjectName(prefix string, userID int64, at time.Time, id string) string {
	return path.Join(
		prefix,
		strconv.FormatInt(userID, 10),
		at.UTC().Format("2006/01/02"),
		id+".xlsx",
	)
}

// ParseGCSURI splits "gs://bucket/path/to/object" into bucket and object.
func ParseGCSURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// FilenameFromURI returns the last path element of a GCS URI.
// e.g., "gs://bucket/folder/file.xlsx" → "file.xlsx"
func FilenameFromURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}
